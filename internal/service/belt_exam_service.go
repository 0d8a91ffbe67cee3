package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

type BeltExamService struct {
	db           *sqlx.DB
	beltExamRepo *repository.BeltExamRepository
	studentRepo  *repository.StudentRepository
	logger       *zap.Logger
}

func NewBeltExamService(
	db *sqlx.DB,
	beltExamRepo *repository.BeltExamRepository,
	studentRepo *repository.StudentRepository,
	logger *zap.Logger,
) *BeltExamService {
	return &BeltExamService{
		db:           db,
		beltExamRepo: beltExamRepo,
		studentRepo:  studentRepo,
		logger:       logger,
	}
}

// Record сохраняет результат экзамена. Сданный экзамен
// одновременно меняет текущий пояс ученика.
func (s *BeltExamService) Record(ctx context.Context, exam *model.BeltExam) error {
	student, err := s.studentRepo.GetByID(ctx, exam.StudentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("student not found")
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.beltExamRepo.WithTx(tx).Create(ctx, exam); err != nil {
		return err
	}

	if exam.Result == model.ExamResultPass {
		if err := s.studentRepo.WithTx(tx).UpdateBelt(ctx, exam.StudentID, exam.BeltColor); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit belt exam: %w", err)
	}

	s.logger.Info("Belt exam recorded",
		zap.Int64("student_id", exam.StudentID),
		zap.String("belt", string(exam.BeltColor)),
		zap.String("result", string(exam.Result)))

	return nil
}

// History возвращает экзамены ученика
func (s *BeltExamService) History(ctx context.Context, studentID int64) ([]*model.BeltExam, error) {
	return s.beltExamRepo.ListByStudent(ctx, studentID)
}
