package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/service"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Резервные копии базы данных",
	}

	cmd.AddCommand(
		newBackupCreateCmd(),
		newBackupListCmd(),
		newBackupRestoreCmd(),
		newBackupDeleteCmd(),
		newBackupCleanupCmd(),
	)

	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	var includeFiles bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать резервную копию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.backupSvc.CreateBackup(includeFiles)
			if err != nil {
				return err
			}

			fmt.Printf("Копия создана: %s (%s)\n", rec.Timestamp, service.FormatSize(a.backupSvc.BackupSize(rec)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeFiles, "include-files", false, "включить архив файлов приложения")

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать список копий",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.backupSvc.ListBackups()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("Резервных копий нет")
				return nil
			}

			for _, rec := range records {
				files := "-"
				if rec.IncludeFiles {
					files = "+файлы"
				}
				fmt.Printf("%s\t%s\t%s\t%s\n",
					rec.Timestamp, rec.BackupType, service.FormatSize(a.backupSvc.BackupSize(rec)), files)
			}
			return nil
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	var restoreFiles bool

	cmd := &cobra.Command{
		Use:   "restore <timestamp>",
		Short: "Восстановить базу из копии",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := findBackup(a, args[0])
			if err != nil {
				return err
			}

			if err := a.backupSvc.RestoreBackup(rec, restoreFiles); err != nil {
				return err
			}

			fmt.Printf("База восстановлена из копии %s\n", rec.Timestamp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&restoreFiles, "files", false, "восстановить также архив файлов")

	return cmd
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <timestamp>",
		Short: "Удалить резервную копию",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := findBackup(a, args[0])
			if err != nil {
				return err
			}

			if err := a.backupSvc.DeleteBackup(rec); err != nil {
				return err
			}

			fmt.Printf("Копия %s удалена\n", rec.Timestamp)
			return nil
		},
	}
}

func newBackupCleanupCmd() *cobra.Command {
	var keepDays int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Удалить устаревшие копии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.backupSvc.CleanupOldBackups(keepDays)
			if err != nil {
				return err
			}

			fmt.Printf("Удалено файлов: %d\n", deleted)
			return nil
		},
	}

	cmd.Flags().IntVar(&keepDays, "keep-days", 7, "сколько дней хранить копии")

	return cmd
}

func findBackup(a *application, timestamp string) (*model.BackupRecord, error) {
	records, err := a.backupSvc.ListBackups()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Timestamp == timestamp {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("копия %s не найдена", timestamp)
}
