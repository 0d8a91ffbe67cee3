package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository/base"
)

type PaymentRepository struct {
	db base.Queryer
}

func NewPaymentRepository(db base.Queryer) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx возвращает копию репозитория, работающую внутри транзакции
func (r *PaymentRepository) WithTx(tx *sqlx.Tx) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create создаёт новый платёж
func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}

	query := `
		INSERT INTO payments (student_id, amount, payment_date, payment_type, description)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(
		ctx, query,
		payment.StudentID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentType,
		payment.Description,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	payment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create payment: last insert id: %w", err)
	}

	return nil
}

// Count возвращает общее количество платежей
func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments`)
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}

// TotalAmount возвращает суммарную выручку за всё время
func (r *PaymentRepository) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM payments`)
	if err != nil {
		return 0, fmt.Errorf("total payment amount: %w", err)
	}
	return total, nil
}

// MonthlyRevenue возвращает выручку по месяцам
func (r *PaymentRepository) MonthlyRevenue(ctx context.Context) ([]model.MonthRevenue, error) {
	query := `
		SELECT strftime('%Y-%m', payment_date) AS month, SUM(amount) AS revenue
		FROM payments
		GROUP BY strftime('%Y-%m', payment_date)
		ORDER BY month
	`

	var rows []model.MonthRevenue
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	return rows, nil
}

// ListForExport возвращает платежи с именем и телефоном ученика
func (r *PaymentRepository) ListForExport(ctx context.Context) ([]model.PaymentExportRow, error) {
	query := `
		SELECT p.id,
		       s.first_name || ' ' || s.last_name AS student_name,
		       s.phone AS student_phone,
		       p.amount,
		       p.payment_type,
		       p.description,
		       p.payment_date
		FROM payments p
		JOIN students s ON s.id = p.student_id
		ORDER BY p.payment_date
	`

	var rows []model.PaymentExportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list payments for export: %w", err)
	}
	return rows, nil
}
