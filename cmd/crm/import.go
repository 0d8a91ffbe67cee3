package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appint "github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/app"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			migrator, err := appint.NewMigrator(a.db, a.cfg.MigrationsDir)
			if err != nil {
				return err
			}
			if err := migrator.Run(cmd.Context()); err != nil {
				return err
			}

			version, err := migrator.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("База данных на версии %d\n", version)
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var (
		filePath string
		url      string
		update   bool
		check    bool
	)

	cmd := &cobra.Command{
		Use:       "import [students|trainings|payments]",
		Short:     "Импортировать данные из CSV файла или ссылки Google Sheets",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"students", "trainings", "payments"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := model.ImportTarget(args[0])
			if !target.Valid() {
				return fmt.Errorf("неподдерживаемый тип данных: %s", args[0])
			}
			if (filePath == "") == (url == "") {
				return fmt.Errorf("укажите ровно один источник: --file или --url")
			}

			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			if check {
				var validation model.ValidationResult
				if filePath != "" {
					validation = a.importSvc.ValidateFile(filePath, target)
				} else {
					validation = a.importSvc.ValidateURL(cmd.Context(), url, target)
				}
				if !validation.Valid {
					return fmt.Errorf("файл не прошёл проверку: %s", validation.Err)
				}
				fmt.Printf("Файл корректен: %d строк, колонки: %v\n", validation.RowCount, validation.Headers)
				if filePath != "" {
					fmt.Printf("Кодировка: %s\n", a.importSvc.DetectEncoding(filePath))
				}
				return nil
			}

			policy := model.DedupeSkip
			if update {
				policy = model.DedupeUpdate
			}

			var res *model.ImportResult
			if filePath != "" {
				res, err = a.importSvc.ImportFile(cmd.Context(), filePath, target, policy)
			} else {
				res, err = a.importSvc.ImportURL(cmd.Context(), url, target, policy)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Импортировано: %d, обновлено: %d, пропущено: %d (строк: %d)\n",
				res.Imported, res.Updated, res.Skipped, res.TotalRows)
			printRowErrors(res.Errors)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "путь к локальному CSV файлу")
	cmd.Flags().StringVar(&url, "url", "", "ссылка на CSV или таблицу Google Sheets")
	cmd.Flags().BoolVar(&update, "update", false, "обновлять найденные записи вместо пропуска")
	cmd.Flags().BoolVar(&check, "check", false, "только проверить формат, без импорта")

	return cmd
}

// maxErrorPreview сколько построчных ошибок показываем целиком
const maxErrorPreview = 10

func printRowErrors(errors []string) {
	if len(errors) == 0 {
		return
	}

	fmt.Printf("Ошибки (%d):\n", len(errors))
	for i, e := range errors {
		if i == maxErrorPreview {
			fmt.Printf("  ... и ещё %d\n", len(errors)-maxErrorPreview)
			break
		}
		fmt.Printf("  %s\n", e)
	}
}

func newTemplateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Шаблон CSV для импорта учеников",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.Close()

			if outPath == "" {
				fmt.Println(a.importSvc.Template())
				return nil
			}

			if err := a.importSvc.ExportTemplate(outPath); err != nil {
				return err
			}
			fmt.Printf("Шаблон сохранён: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "файл для сохранения шаблона")
	return cmd
}
