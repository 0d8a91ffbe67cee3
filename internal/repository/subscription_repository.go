package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type SubscriptionRepository struct {
	db base.Queryer
}

func NewSubscriptionRepository(db base.Queryer) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *SubscriptionRepository) WithTx(tx *sqlx.Tx) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

// Create создаёт новый абонемент
func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (student_id, subscription_type, start_date, end_date, price, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		sub.StudentID,
		sub.Type,
		sub.StartDate,
		sub.EndDate,
		sub.Price,
		sub.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	sub.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create subscription: last insert id: %w", err)
	}

	return nil
}

// GetActiveByStudent возвращает действующий абонемент ученика
func (r *SubscriptionRepository) GetActiveByStudent(ctx context.Context, studentID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub,
		`SELECT * FROM subscriptions WHERE student_id = ? AND is_active = 1 ORDER BY start_date DESC LIMIT 1`,
		studentID,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active subscription: %w", err)
	}
	return &sub, nil
}

// ListExpiringBetween возвращает активные абонементы, заканчивающиеся в интервале
func (r *SubscriptionRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.SelectContext(ctx, &subs,
		`SELECT * FROM subscriptions WHERE is_active = 1 AND end_date >= ? AND end_date <= ?`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring subscriptions: %w", err)
	}
	return subs, nil
}

// DeactivateExpired снимает активность с истёкших абонементов
// и возвращает количество затронутых записей
func (r *SubscriptionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET is_active = 0 WHERE is_active = 1 AND end_date IS NOT NULL AND end_date < ?`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired subscriptions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate expired subscriptions: rows affected: %w", err)
	}
	return affected, nil
}
