package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func newTrainerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainer",
		Short: "Управление тренерами",
	}

	cmd.AddCommand(newTrainerAddCmd(), newTrainerListCmd())

	return cmd
}

func newTrainerAddCmd() *cobra.Command {
	var (
		firstName string
		lastName  string
		phone     string
		email     string
		main      bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Добавить тренера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			trainer := &model.Trainer{
				FirstName: firstName,
				LastName:  lastName,
				IsMain:    main,
				IsActive:  true,
			}
			if phone != "" {
				trainer.Phone = &phone
			}
			if email != "" {
				trainer.Email = &email
			}

			if err := a.trainers.Create(cmd.Context(), trainer); err != nil {
				return err
			}

			fmt.Printf("Тренер добавлен: %s (id=%d)\n", trainer.FullName(), trainer.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "имя")
	cmd.Flags().StringVar(&lastName, "last-name", "", "фамилия")
	cmd.Flags().StringVar(&phone, "phone", "", "телефон")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().BoolVar(&main, "main", false, "основной тренер")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}

func newTrainerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать активных тренеров",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			trainers, err := a.trainers.ListActive(cmd.Context())
			if err != nil {
				return err
			}
			if len(trainers) == 0 {
				fmt.Println("Активных тренеров нет")
				return nil
			}

			for _, tr := range trainers {
				role := "резервный"
				if tr.IsMain {
					role = "основной"
				}
				fmt.Printf("%d\t%s\t%s\n", tr.ID, tr.FullName(), role)
			}
			return nil
		},
	}
}
