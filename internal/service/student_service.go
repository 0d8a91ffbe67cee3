package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

type StudentService struct {
	studentRepo *repository.StudentRepository
	logger      *zap.Logger
}

func NewStudentService(studentRepo *repository.StudentRepository, logger *zap.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		logger:      logger,
	}
}

// Register добавляет нового ученика. Телефон должен быть уникален.
func (s *StudentService) Register(ctx context.Context, student *model.Student) error {
	if student.FirstName == "" || student.LastName == "" || student.Phone == "" {
		return fmt.Errorf("first name, last name and phone are required")
	}

	existing, err := s.studentRepo.GetByPhone(ctx, student.Phone)
	if err != nil {
		return fmt.Errorf("check existing student: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("student with phone %s already exists", student.Phone)
	}

	student.IsActive = true
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return err
	}

	s.logger.Info("Student registered",
		zap.Int64("student_id", student.ID),
		zap.String("name", student.FullName()))

	return nil
}

// Update сохраняет изменения ученика
func (s *StudentService) Update(ctx context.Context, student *model.Student) error {
	return s.studentRepo.Update(ctx, student)
}

// GetByPhone ищет ученика по телефону
func (s *StudentService) GetByPhone(ctx context.Context, phone string) (*model.Student, error) {
	return s.studentRepo.GetByPhone(ctx, phone)
}

// ListActive возвращает активных учеников
func (s *StudentService) ListActive(ctx context.Context) ([]*model.Student, error) {
	return s.studentRepo.ListActive(ctx)
}

// Deactivate убирает ученика из активного состава
func (s *StudentService) Deactivate(ctx context.Context, studentID int64) error {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("student not found")
	}

	student.IsActive = false
	return s.studentRepo.Update(ctx, student)
}
