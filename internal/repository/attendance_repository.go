package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type AttendanceRepository struct {
	db base.Queryer
}

func NewAttendanceRepository(db base.Queryer) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *AttendanceRepository) WithTx(tx *sqlx.Tx) *AttendanceRepository {
	return &AttendanceRepository{db: tx}
}

// Create отмечает посещение
func (r *AttendanceRepository) Create(ctx context.Context, attendance *model.Attendance) error {
	query := `
		INSERT INTO attendances (student_id, training_id, status, notes)
		VALUES (?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		attendance.StudentID,
		attendance.TrainingID,
		attendance.Status,
		attendance.Notes,
	)
	if err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}

	attendance.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create attendance: last insert id: %w", err)
	}

	return nil
}

// CountAbsencesSince считает пропуски ученика начиная с указанной даты
func (r *AttendanceRepository) CountAbsencesSince(ctx context.Context, studentID int64, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(a.id)
		FROM attendances a
		JOIN trainings t ON t.id = a.training_id
		WHERE a.student_id = ? AND a.status = ? AND t.date >= ?
	`

	var count int64
	err := r.db.GetContext(ctx, &count, query, studentID, model.AttendanceStatusAbsent, since)
	if err != nil {
		return 0, fmt.Errorf("count absences: %w", err)
	}
	return count, nil
}

// ListAbsentStudentsSince возвращает учеников с хотя бы одним пропуском
// начиная с указанной даты
func (r *AttendanceRepository) ListAbsentStudentsSince(ctx context.Context, since time.Time) ([]*model.Student, error) {
	query := `
		SELECT DISTINCT s.*
		FROM students s
		JOIN attendances a ON a.student_id = s.id
		JOIN trainings t ON t.id = a.training_id
		WHERE a.status = ? AND t.date >= ?
	`

	var students []*model.Student
	err := r.db.SelectContext(ctx, &students, query, model.AttendanceStatusAbsent, since)
	if err != nil {
		return nil, fmt.Errorf("list absent students: %w", err)
	}
	return students, nil
}

// ListForExport возвращает посещения с именами ученика и тренера
func (r *AttendanceRepository) ListForExport(ctx context.Context) ([]model.AttendanceExportRow, error) {
	query := `
		SELECT a.id,
		       s.first_name || ' ' || s.last_name AS student_name,
		       s.phone AS student_phone,
		       t.date AS training_date,
		       tr.first_name || ' ' || tr.last_name AS trainer_name,
		       a.status,
		       a.notes
		FROM attendances a
		JOIN students s ON s.id = a.student_id
		JOIN trainings t ON t.id = a.training_id
		JOIN trainers tr ON tr.id = t.trainer_id
		ORDER BY t.date
	`

	var rows []model.AttendanceExportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list attendances for export: %w", err)
	}
	return rows, nil
}
