package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type StudentRepository struct {
	db base.Queryer
}

func NewStudentRepository(db base.Queryer) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *StudentRepository) WithTx(tx *sqlx.Tx) *StudentRepository {
	return &StudentRepository{db: tx}
}

// Create создаёт нового ученика
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	if student.RegistrationDate.IsZero() {
		student.RegistrationDate = time.Now().UTC()
	}
	if student.CurrentBelt == "" {
		student.CurrentBelt = model.BeltWhite
	}

	query := `
		INSERT INTO students (first_name, last_name, phone, telegram_id, email, current_belt, registration_date, is_active, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		student.FirstName,
		student.LastName,
		student.Phone,
		student.TelegramID,
		student.Email,
		student.CurrentBelt,
		student.RegistrationDate,
		student.IsActive,
		student.Notes,
	)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	student.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create student: last insert id: %w", err)
	}

	return nil
}

// GetByID получает ученика по ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE id = ?`, id)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}
	return &student, nil
}

// GetByPhone получает ученика по номеру телефона
func (r *StudentRepository) GetByPhone(ctx context.Context, phone string) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE phone = ?`, phone)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by phone: %w", err)
	}
	return &student, nil
}

// GetByTelegramID получает ученика по Telegram ID
func (r *StudentRepository) GetByTelegramID(ctx context.Context, telegramID string) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE telegram_id = ?`, telegramID)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by telegram id: %w", err)
	}
	return &student, nil
}

// GetByName получает ученика по точному совпадению имени и фамилии
func (r *StudentRepository) GetByName(ctx context.Context, firstName, lastName string) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student,
		`SELECT * FROM students WHERE first_name = ? AND last_name = ?`,
		firstName, lastName,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by name: %w", err)
	}
	return &student, nil
}

// Update обновляет данные ученика
func (r *StudentRepository) Update(ctx context.Context, student *model.Student) error {
	query := `
		UPDATE students
		SET first_name = ?, last_name = ?, phone = ?, telegram_id = ?, email = ?, current_belt = ?, is_active = ?, notes = ?
		WHERE id = ?
	`

	res, err := r.db.ExecContext(
		ctx, query,
		student.FirstName,
		student.LastName,
		student.Phone,
		student.TelegramID,
		student.Email,
		student.CurrentBelt,
		student.IsActive,
		student.Notes,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("student not found")
	}

	return nil
}

// UpdateBelt меняет текущий пояс ученика
func (r *StudentRepository) UpdateBelt(ctx context.Context, studentID int64, belt model.Belt) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET current_belt = ? WHERE id = ?`,
		belt, studentID,
	)
	if err != nil {
		return fmt.Errorf("update belt: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update belt: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("student not found")
	}

	return nil
}

// List возвращает всех учеников
func (r *StudentRepository) List(ctx context.Context) ([]*model.Student, error) {
	var students []*model.Student
	err := r.db.SelectContext(ctx, &students,
		`SELECT * FROM students ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListActive возвращает активных учеников
func (r *StudentRepository) ListActive(ctx context.Context) ([]*model.Student, error) {
	var students []*model.Student
	err := r.db.SelectContext(ctx, &students,
		`SELECT * FROM students WHERE is_active = 1 ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// Count возвращает общее количество учеников
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CountByBelt возвращает распределение учеников по поясам
func (r *StudentRepository) CountByBelt(ctx context.Context) ([]model.BeltCount, error) {
	var counts []model.BeltCount
	err := r.db.SelectContext(ctx, &counts,
		`SELECT current_belt, COUNT(id) AS cnt FROM students GROUP BY current_belt`)
	if err != nil {
		return nil, fmt.Errorf("count students by belt: %w", err)
	}
	return counts, nil
}
