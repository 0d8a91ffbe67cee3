package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func newAttendanceCmd() *cobra.Command {
	var (
		studentID  int64
		trainingID int64
		status     string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Отметить посещение тренировки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			attendance := &model.Attendance{
				StudentID:  studentID,
				TrainingID: trainingID,
				Status:     model.AttendanceStatus(status),
			}
			if notes != "" {
				attendance.Notes = &notes
			}

			if err := a.attendances.Create(cmd.Context(), attendance); err != nil {
				return err
			}

			fmt.Printf("Посещение отмечено: ученик %d, тренировка %d, статус %s\n", studentID, trainingID, status)
			return nil
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "id ученика")
	cmd.Flags().Int64Var(&trainingID, "training", 0, "id тренировки")
	cmd.Flags().StringVar(&status, "status", string(model.AttendanceStatusPresent), "статус (Present|Absent|Late)")
	cmd.Flags().StringVar(&notes, "notes", "", "заметки")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("training")

	return cmd
}
