package model

import "time"

type SubscriptionType string

const (
	SubscriptionTypeMonthly SubscriptionType = "Monthly"
	SubscriptionTypeSingle  SubscriptionType = "Single"
)

type Subscription struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	Type      SubscriptionType `db:"subscription_type" json:"subscription_type"`
	StartDate time.Time        `db:"start_date" json:"start_date"`
	EndDate   *time.Time       `db:"end_date" json:"end_date"` // указатель - может быть nil
	Price     float64          `db:"price" json:"price"`
	IsActive  bool             `db:"is_active" json:"is_active"`
}
