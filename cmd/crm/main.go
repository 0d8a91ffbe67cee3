package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/app"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/config"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crm",
		Short:         "CRM академии бразильского джиу-джитсу",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newImportCmd(),
		newTemplateCmd(),
		newExportCmd(),
		newBackupCmd(),
		newStudentCmd(),
		newTrainerCmd(),
		newAttendanceCmd(),
		newSubscriptionCmd(),
		newExamCmd(),
		newServeCmd(),
	)

	return root
}

// application собирает зависимости для команд CLI
type application struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB

	students      *repository.StudentRepository
	trainers      *repository.TrainerRepository
	trainings     *repository.TrainingRepository
	attendances   *repository.AttendanceRepository
	subscriptions *repository.SubscriptionRepository
	payments      *repository.PaymentRepository
	beltExams     *repository.BeltExamRepository

	importSvc       *service.ImportService
	exportSvc       *service.ExportService
	backupSvc       *service.BackupService
	studentSvc      *service.StudentService
	subscriptionSvc *service.SubscriptionService
	beltExamSvc     *service.BeltExamService
	notificationSvc *service.NotificationService
}

func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogPath)

	db, err := app.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	a := &application{
		cfg:    cfg,
		logger: logger,
		db:     db,

		students:      repository.NewStudentRepository(db),
		trainers:      repository.NewTrainerRepository(db),
		trainings:     repository.NewTrainingRepository(db),
		attendances:   repository.NewAttendanceRepository(db),
		subscriptions: repository.NewSubscriptionRepository(db),
		payments:      repository.NewPaymentRepository(db),
		beltExams:     repository.NewBeltExamRepository(db),
	}

	a.importSvc = service.NewImportService(db, a.students, a.trainers, a.trainings, a.payments, logger)
	a.exportSvc = service.NewExportService(cfg.ExportDir, a.students, a.trainings, a.attendances, a.payments, logger)
	a.backupSvc = service.NewBackupService(cfg.AppDir, cfg.BackupDir, cfg.DBPath, config.AppVersion, logger)
	a.studentSvc = service.NewStudentService(a.students, logger)
	a.subscriptionSvc = service.NewSubscriptionService(a.subscriptions, logger)
	a.beltExamSvc = service.NewBeltExamService(db, a.beltExams, a.students, logger)

	// Уведомления работают только при настроенном токене
	if cfg.TelegramToken != "" {
		a.notificationSvc, err = service.NewNotificationService(
			cfg.TelegramToken,
			cfg.TelegramChat,
			a.students,
			a.trainers,
			a.trainings,
			a.attendances,
			a.subscriptions,
			logger,
		)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *application) Close() {
	a.db.Close()
	a.logger.Sync()
}
