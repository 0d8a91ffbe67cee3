package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	botmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

type NotificationService struct {
	bot              *bot.Bot
	defaultChat      string
	studentRepo      *repository.StudentRepository
	trainerRepo      *repository.TrainerRepository
	trainingRepo     *repository.TrainingRepository
	attendanceRepo   *repository.AttendanceRepository
	subscriptionRepo *repository.SubscriptionRepository
	logger           *zap.Logger
}

func NewNotificationService(
	token string,
	defaultChat string,
	studentRepo *repository.StudentRepository,
	trainerRepo *repository.TrainerRepository,
	trainingRepo *repository.TrainingRepository,
	attendanceRepo *repository.AttendanceRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	logger *zap.Logger,
) (*NotificationService, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &NotificationService{
		bot:              b,
		defaultChat:      defaultChat,
		studentRepo:      studentRepo,
		trainerRepo:      trainerRepo,
		trainingRepo:     trainingRepo,
		attendanceRepo:   attendanceRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}, nil
}

// SendMessage отправляет HTML-сообщение в указанный чат
// (или в чат по умолчанию, если chatID пуст)
func (s *NotificationService) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		chatID = s.defaultChat
	}
	if chatID == "" {
		return fmt.Errorf("telegram chat id is not configured")
	}

	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: botmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// SendTrainingReminders рассылает активным ученикам напоминания
// о тренировках, начинающихся в ближайшие hoursBefore часов
func (s *NotificationService) SendTrainingReminders(ctx context.Context, hoursBefore int) error {
	now := time.Now().UTC()
	upcoming, err := s.trainingRepo.ListBetween(ctx, now, now.Add(time.Duration(hoursBefore)*time.Hour))
	if err != nil {
		return err
	}
	if len(upcoming) == 0 {
		return nil
	}

	students, err := s.studentRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, training := range upcoming {
		trainer, err := s.trainerRepo.GetByID(ctx, training.TrainerID)
		if err != nil {
			return err
		}

		text := fmt.Sprintf("🏆 <b>Напоминание о тренировке</b>\n\n📅 Дата: %s\n",
			training.Date.Format("02.01.2006 15:04"))
		if trainer != nil {
			text += fmt.Sprintf("👨‍🏫 Тренер: %s\n", trainer.FullName())
		}
		text += "\nНе забудьте про тренировку!"

		sent := 0
		for _, student := range students {
			if student.TelegramID == nil {
				continue
			}
			if err := s.SendMessage(ctx, *student.TelegramID, text); err != nil {
				s.logger.Warn("Failed to send training reminder",
					zap.Int64("student_id", student.ID),
					zap.Error(err))
				continue
			}
			sent++
		}

		s.logger.Info("Training reminders sent",
			zap.Int64("training_id", training.ID),
			zap.Int("recipients", sent))
	}

	return nil
}

// NotifyMissedClasses напоминает о себе ученикам, пропустившим
// threshold и более тренировок за последние 30 дней
func (s *NotificationService) NotifyMissedClasses(ctx context.Context, threshold int64) error {
	since := time.Now().UTC().AddDate(0, 0, -30)

	students, err := s.attendanceRepo.ListAbsentStudentsSince(ctx, since)
	if err != nil {
		return err
	}

	for _, student := range students {
		missed, err := s.attendanceRepo.CountAbsencesSince(ctx, student.ID, since)
		if err != nil {
			return err
		}
		if missed < threshold || student.TelegramID == nil {
			continue
		}

		text := fmt.Sprintf("👋 Привет, %s!\n\nМы заметили, что вы пропустили %d тренировок подряд.\nНадеемся увидеть вас на следующей тренировке! 💪",
			student.FirstName, missed)

		if err := s.SendMessage(ctx, *student.TelegramID, text); err != nil {
			s.logger.Warn("Failed to send missed classes notification",
				zap.Int64("student_id", student.ID),
				zap.Error(err))
		}
	}

	return nil
}

// SendBeltExamNotification уведомляет ученика о назначенном экзамене
func (s *NotificationService) SendBeltExamNotification(ctx context.Context, student *model.Student, belt model.Belt, examDate time.Time) error {
	if student.TelegramID == nil {
		return nil
	}

	text := fmt.Sprintf("🥋 <b>Экзамен на пояс</b>\n\n👤 Студент: %s\n🎯 Пояс: %s\n📅 Дата: %s\n\nУдачи на экзамене! 💪",
		student.FullName(), belt, examDate.Format("02.01.2006 15:04"))

	return s.SendMessage(ctx, *student.TelegramID, text)
}

// SendPaymentReminders напоминает об оплате ученикам, чьи абонементы
// истекают в ближайшие 7 дней
func (s *NotificationService) SendPaymentReminders(ctx context.Context) error {
	now := time.Now().UTC()
	expiring, err := s.subscriptionRepo.ListExpiringBetween(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return err
	}

	for _, sub := range expiring {
		student, err := s.studentRepo.GetByID(ctx, sub.StudentID)
		if err != nil {
			return err
		}
		if student == nil || student.TelegramID == nil {
			continue
		}

		text := fmt.Sprintf("💰 <b>Напоминание об оплате</b>\n\n👤 %s\n📋 Тип: %s\n💳 Пожалуйста, внесите оплату до конца месяца",
			student.FullName(), sub.Type)

		if err := s.SendMessage(ctx, *student.TelegramID, text); err != nil {
			s.logger.Warn("Failed to send payment reminder",
				zap.Int64("student_id", student.ID),
				zap.Error(err))
		}
	}

	return nil
}
