package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

// monthlySubscriptionDays срок месячного абонемента
const monthlySubscriptionDays = 30

type SubscriptionService struct {
	subscriptionRepo *repository.SubscriptionRepository
	logger           *zap.Logger
}

func NewSubscriptionService(subscriptionRepo *repository.SubscriptionRepository, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Create оформляет абонемент. Месячный абонемент без явной даты окончания
// получает срок 30 дней от даты начала.
func (s *SubscriptionService) Create(ctx context.Context, sub *model.Subscription) error {
	if sub.StartDate.IsZero() {
		sub.StartDate = time.Now().UTC()
	}
	if sub.Type == model.SubscriptionTypeMonthly && sub.EndDate == nil {
		end := sub.StartDate.AddDate(0, 0, monthlySubscriptionDays)
		sub.EndDate = &end
	}
	sub.IsActive = true

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("Subscription created",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("student_id", sub.StudentID),
		zap.String("type", string(sub.Type)))

	return nil
}

// GetActive возвращает действующий абонемент ученика
func (s *SubscriptionService) GetActive(ctx context.Context, studentID int64) (*model.Subscription, error) {
	return s.subscriptionRepo.GetActiveByStudent(ctx, studentID)
}

// DeactivateExpired снимает активность с истёкших абонементов
func (s *SubscriptionService) DeactivateExpired(ctx context.Context) (int64, error) {
	count, err := s.subscriptionRepo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.Info("Expired subscriptions deactivated", zap.Int64("count", count))
	}
	return count, nil
}
