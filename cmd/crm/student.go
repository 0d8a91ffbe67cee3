package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func newStudentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Управление учениками",
	}

	cmd.AddCommand(newStudentAddCmd(), newStudentListCmd(), newStudentFindCmd(), newStudentDeactivateCmd())

	return cmd
}

func newStudentAddCmd() *cobra.Command {
	var (
		firstName  string
		lastName   string
		phone      string
		telegramID string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Зарегистрировать ученика",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			student := &model.Student{
				FirstName: firstName,
				LastName:  lastName,
				Phone:     phone,
			}
			if telegramID != "" {
				student.TelegramID = &telegramID
			}
			if email != "" {
				student.Email = &email
			}

			if err := a.studentSvc.Register(cmd.Context(), student); err != nil {
				return err
			}

			fmt.Printf("Ученик зарегистрирован: %s (id=%d)\n", student.FullName(), student.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "имя")
	cmd.Flags().StringVar(&lastName, "last-name", "", "фамилия")
	cmd.Flags().StringVar(&phone, "phone", "", "телефон")
	cmd.Flags().StringVar(&telegramID, "telegram", "", "Telegram ID")
	cmd.Flags().StringVar(&email, "email", "", "email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newStudentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать активных учеников",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			students, err := a.studentSvc.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			if len(students) == 0 {
				fmt.Println("Активных учеников нет")
				return nil
			}

			for _, st := range students {
				fmt.Printf("%d\t%s\t%s\t%s\n", st.ID, st.FullName(), st.Phone, st.CurrentBelt)
			}
			return nil
		},
	}
}

func newStudentFindCmd() *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Найти ученика по телефону",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			student, err := a.studentSvc.GetByPhone(cmd.Context(), phone)
			if err != nil {
				return err
			}
			if student == nil {
				return fmt.Errorf("ученик с телефоном %s не найден", phone)
			}

			fmt.Printf("%d\t%s\t%s\t%s\n", student.ID, student.FullName(), student.Phone, student.CurrentBelt)
			if student.TelegramID != nil {
				fmt.Printf("Telegram: %s\n", *student.TelegramID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "телефон")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newStudentDeactivateCmd() *cobra.Command {
	var studentID int64

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Деактивировать ученика",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.studentSvc.Deactivate(cmd.Context(), studentID); err != nil {
				return err
			}

			fmt.Printf("Ученик %d деактивирован\n", studentID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&studentID, "id", 0, "id ученика")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newSubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Управление абонементами",
	}

	cmd.AddCommand(newSubscriptionAddCmd(), newSubscriptionExpireCmd())

	return cmd
}

func newSubscriptionAddCmd() *cobra.Command {
	var (
		studentID int64
		subType   string
		price     float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Оформить абонемент",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			sub := &model.Subscription{
				StudentID: studentID,
				Type:      model.SubscriptionType(subType),
				StartDate: time.Now(),
				Price:     price,
				IsActive:  true,
			}

			if err := a.subscriptionSvc.Create(cmd.Context(), sub); err != nil {
				return err
			}

			fmt.Printf("Абонемент оформлен (id=%d)\n", sub.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "id ученика")
	cmd.Flags().StringVar(&subType, "type", string(model.SubscriptionTypeMonthly), "тип абонемента (Monthly|Single)")
	cmd.Flags().Float64Var(&price, "price", 0, "стоимость")
	_ = cmd.MarkFlagRequired("student")

	return cmd
}

func newSubscriptionExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Деактивировать просроченные абонементы",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.subscriptionSvc.DeactivateExpired(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Деактивировано абонементов: %d\n", n)
			return nil
		},
	}
}

func newExamCmd() *cobra.Command {
	var (
		studentID int64
		belt      string
		result    string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Записать экзамен на пояс",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			exam := &model.BeltExam{
				StudentID: studentID,
				BeltColor: model.Belt(belt),
				ExamDate:  time.Now(),
				Result:    model.ExamResult(result),
			}
			if notes != "" {
				exam.Notes = &notes
			}

			if err := a.beltExamSvc.Record(cmd.Context(), exam); err != nil {
				return err
			}

			if a.notificationSvc != nil && exam.Result == model.ExamResultPass {
				student, err := a.students.GetByID(cmd.Context(), studentID)
				if err == nil && student != nil {
					if err := a.notificationSvc.SendBeltExamNotification(cmd.Context(), student, exam.BeltColor, exam.ExamDate); err != nil {
						a.logger.Warn("Failed to send belt exam notification", zap.Error(err))
					}
				}
			}

			fmt.Printf("Экзамен записан: ученик %d, пояс %s, результат %s\n", studentID, belt, result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "id ученика")
	cmd.Flags().StringVar(&belt, "belt", "", "цвет пояса (White|Blue|Purple|Brown|Black)")
	cmd.Flags().StringVar(&result, "result", string(model.ExamResultPass), "результат (Pass|Fail)")
	cmd.Flags().StringVar(&notes, "notes", "", "заметки")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("belt")

	return cmd
}
