package model

import "time"

type PaymentType string

const (
	PaymentTypeMonthly PaymentType = "Monthly"
	PaymentTypeSingle  PaymentType = "Single"
	PaymentTypeExam    PaymentType = "Exam"
)

type Payment struct {
	ID          int64       `db:"id" json:"id"`
	StudentID   int64       `db:"student_id" json:"student_id"`
	Amount      float64     `db:"amount" json:"amount"`
	PaymentDate time.Time   `db:"payment_date" json:"payment_date"`
	PaymentType PaymentType `db:"payment_type" json:"payment_type"`
	Description *string     `db:"description" json:"description"`
}
