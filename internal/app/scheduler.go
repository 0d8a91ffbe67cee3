package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/service"
)

// Scheduler управляет фоновыми задачами: напоминаниями,
// чисткой абонементов и ночными резервными копиями
type Scheduler struct {
	notifications *service.NotificationService
	subscriptions *service.SubscriptionService
	backups       *service.BackupService
	logger        *zap.Logger
	stopChan      chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	notifications *service.NotificationService,
	subscriptions *service.SubscriptionService,
	backups *service.BackupService,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		notifications: notifications,
		subscriptions: subscriptions,
		backups:       backups,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runReminderTask(ctx)
	go s.runMaintenanceTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runReminderTask ежечасно рассылает напоминания о тренировках
func (s *Scheduler) runReminderTask(ctx context.Context) {
	s.sendReminders(ctx)

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sendReminders(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder task cancelled")
			return
		}
	}
}

// runMaintenanceTask раз в сутки: напоминания об оплате, деактивация
// истёкших абонементов, ночная копия базы и чистка старых копий
func (s *Scheduler) runMaintenanceTask(ctx context.Context) {
	s.runMaintenance(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runMaintenance(ctx)
		case <-s.stopChan:
			s.logger.Info("Maintenance task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Maintenance task cancelled")
			return
		}
	}
}

func (s *Scheduler) sendReminders(ctx context.Context) {
	if s.notifications == nil {
		return
	}

	if err := s.notifications.SendTrainingReminders(ctx, 2); err != nil {
		s.logger.Error("Failed to send training reminders", zap.Error(err))
	}
}

func (s *Scheduler) runMaintenance(ctx context.Context) {
	if s.notifications != nil {
		if err := s.notifications.SendPaymentReminders(ctx); err != nil {
			s.logger.Error("Failed to send payment reminders", zap.Error(err))
		}
		if err := s.notifications.NotifyMissedClasses(ctx, 2); err != nil {
			s.logger.Error("Failed to notify about missed classes", zap.Error(err))
		}
	}

	if _, err := s.subscriptions.DeactivateExpired(ctx); err != nil {
		s.logger.Error("Failed to deactivate expired subscriptions", zap.Error(err))
	}

	if _, err := s.backups.CreateScheduledBackup(); err != nil {
		s.logger.Error("Failed to create scheduled backup", zap.Error(err))
	}
	if _, err := s.backups.CleanupOldBackups(7); err != nil {
		s.logger.Error("Failed to clean up old backups", zap.Error(err))
	}
}
