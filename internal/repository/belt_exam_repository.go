package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type BeltExamRepository struct {
	db base.Queryer
}

func NewBeltExamRepository(db base.Queryer) *BeltExamRepository {
	return &BeltExamRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *BeltExamRepository) WithTx(tx *sqlx.Tx) *BeltExamRepository {
	return &BeltExamRepository{db: tx}
}

// Create записывает результат экзамена на пояс
func (r *BeltExamRepository) Create(ctx context.Context, exam *model.BeltExam) error {
	query := `
		INSERT INTO belt_exams (student_id, belt_color, exam_date, result, notes)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		exam.StudentID,
		exam.BeltColor,
		exam.ExamDate,
		exam.Result,
		exam.Notes,
	)
	if err != nil {
		return fmt.Errorf("create belt exam: %w", err)
	}

	exam.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create belt exam: last insert id: %w", err)
	}

	return nil
}

// ListByStudent возвращает экзамены ученика в хронологическом порядке
func (r *BeltExamRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.BeltExam, error) {
	var exams []*model.BeltExam
	err := r.db.SelectContext(ctx, &exams,
		`SELECT * FROM belt_exams WHERE student_id = ? ORDER BY exam_date`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list belt exams: %w", err)
	}
	return exams, nil
}
