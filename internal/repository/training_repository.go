package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type TrainingRepository struct {
	db base.Queryer
}

func NewTrainingRepository(db base.Queryer) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *TrainingRepository) WithTx(tx *sqlx.Tx) *TrainingRepository {
	return &TrainingRepository{db: tx}
}

// Create создаёт новую тренировку
func (r *TrainingRepository) Create(ctx context.Context, training *model.Training) error {
	query := `
		INSERT INTO trainings (date, trainer_id, notes)
		VALUES (?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, training.Date, training.TrainerID, training.Notes)
	if err != nil {
		return fmt.Errorf("create training: %w", err)
	}

	training.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create training: last insert id: %w", err)
	}

	return nil
}

// GetByDateAndTrainer ищет тренировку по паре (дата, тренер).
// Используется для отсечения дубликатов при импорте.
func (r *TrainingRepository) GetByDateAndTrainer(ctx context.Context, date time.Time, trainerID int64) (*model.Training, error) {
	var training model.Training
	err := r.db.GetContext(ctx, &training,
		`SELECT * FROM trainings WHERE date = ? AND trainer_id = ?`,
		date, trainerID,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get training by date and trainer: %w", err)
	}
	return &training, nil
}

// ListBetween возвращает тренировки в интервале [from, to]
func (r *TrainingRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*model.Training, error) {
	var trainings []*model.Training
	err := r.db.SelectContext(ctx, &trainings,
		`SELECT * FROM trainings WHERE date >= ? AND date <= ? ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list trainings between: %w", err)
	}
	return trainings, nil
}

// Count возвращает общее количество тренировок
func (r *TrainingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM trainings`)
	if err != nil {
		return 0, fmt.Errorf("count trainings: %w", err)
	}
	return count, nil
}

// ListForExport возвращает тренировки с именем и телефоном тренера
func (r *TrainingRepository) ListForExport(ctx context.Context) ([]model.TrainingExportRow, error) {
	query := `
		SELECT t.id, t.date, tr.first_name || ' ' || tr.last_name AS trainer_name, tr.phone AS trainer_phone, t.notes
		FROM trainings t
		JOIN trainers tr ON tr.id = t.trainer_id
		ORDER BY t.date
	`

	var rows []model.TrainingExportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list trainings for export: %w", err)
	}
	return rows, nil
}
