package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type TrainerRepository struct {
	db base.Queryer
}

func NewTrainerRepository(db base.Queryer) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *TrainerRepository) WithTx(tx *sqlx.Tx) *TrainerRepository {
	return &TrainerRepository{db: tx}
}

// Create создаёт нового тренера
func (r *TrainerRepository) Create(ctx context.Context, trainer *model.Trainer) error {
	query := `
		INSERT INTO trainers (first_name, last_name, phone, email, is_main, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		trainer.FirstName,
		trainer.LastName,
		trainer.Phone,
		trainer.Email,
		trainer.IsMain,
		trainer.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create trainer: %w", err)
	}

	trainer.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create trainer: last insert id: %w", err)
	}

	return nil
}

// GetByID получает тренера по ID
func (r *TrainerRepository) GetByID(ctx context.Context, id int64) (*model.Trainer, error) {
	var trainer model.Trainer
	err := r.db.GetContext(ctx, &trainer, `SELECT * FROM trainers WHERE id = ?`, id)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trainer by id: %w", err)
	}
	return &trainer, nil
}

// GetByName получает тренера по точному совпадению имени и фамилии
func (r *TrainerRepository) GetByName(ctx context.Context, firstName, lastName string) (*model.Trainer, error) {
	var trainer model.Trainer
	err := r.db.GetContext(ctx, &trainer,
		`SELECT * FROM trainers WHERE first_name = ? AND last_name = ?`,
		firstName, lastName,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trainer by name: %w", err)
	}
	return &trainer, nil
}

// ListActive возвращает активных тренеров
func (r *TrainerRepository) ListActive(ctx context.Context) ([]*model.Trainer, error) {
	var trainers []*model.Trainer
	err := r.db.SelectContext(ctx, &trainers,
		`SELECT * FROM trainers WHERE is_active = 1 ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("list active trainers: %w", err)
	}
	return trainers, nil
}
