package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/service"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "export [students|trainings|attendance|payments|all|summary|list]",
		Short:     "Выгрузить данные в CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"students", "trainings", "attendance", "payments", "all", "summary", "list"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()

			switch args[0] {
			case "students":
				path, err := a.exportSvc.ExportStudents(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("Выгрузка сохранена: %s\n", path)
			case "trainings":
				path, err := a.exportSvc.ExportTrainings(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("Выгрузка сохранена: %s\n", path)
			case "attendance":
				path, err := a.exportSvc.ExportAttendance(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("Выгрузка сохранена: %s\n", path)
			case "payments":
				path, err := a.exportSvc.ExportPayments(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("Выгрузка сохранена: %s\n", path)
			case "all":
				paths, err := a.exportSvc.ExportAll(ctx)
				if err != nil {
					return err
				}
				for kind, path := range paths {
					fmt.Printf("%s: %s\n", kind, path)
				}
			case "summary":
				path, err := a.exportSvc.ExportSummaryReport(ctx, "")
				if err != nil {
					return err
				}
				fmt.Printf("Отчёт сохранён: %s\n", path)
			case "list":
				exports, err := a.exportSvc.ListExports()
				if err != nil {
					return err
				}
				for _, e := range exports {
					fmt.Printf("%s\t%s\t%s\n", e.Filename, service.FormatSize(e.Size), e.Modified.Format("2006-01-02 15:04"))
				}
			default:
				return fmt.Errorf("неизвестный тип выгрузки: %s", args[0])
			}

			return nil
		},
	}

	return cmd
}
