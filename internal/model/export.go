package model

import "time"

// Строки выгрузки CSV: сущности, обогащённые связанными именами,
// чтобы выгруженный файл читался без знания внутренних ID.

type TrainingExportRow struct {
	ID           int64     `db:"id"`
	Date         time.Time `db:"date"`
	TrainerName  string    `db:"trainer_name"`
	TrainerPhone *string   `db:"trainer_phone"`
	Notes        *string   `db:"notes"`
}

type AttendanceExportRow struct {
	ID           int64            `db:"id"`
	StudentName  string           `db:"student_name"`
	StudentPhone string           `db:"student_phone"`
	TrainingDate time.Time        `db:"training_date"`
	TrainerName  string           `db:"trainer_name"`
	Status       AttendanceStatus `db:"status"`
	Notes        *string          `db:"notes"`
}

type PaymentExportRow struct {
	ID           int64       `db:"id"`
	StudentName  string      `db:"student_name"`
	StudentPhone string      `db:"student_phone"`
	Amount       float64     `db:"amount"`
	PaymentType  PaymentType `db:"payment_type"`
	Description  *string     `db:"description"`
	PaymentDate  time.Time   `db:"payment_date"`
}

// BeltCount количество учеников с данным поясом
type BeltCount struct {
	Belt  Belt  `db:"current_belt"`
	Count int64 `db:"cnt"`
}

// MonthRevenue выручка за календарный месяц (YYYY-MM)
type MonthRevenue struct {
	Month   string  `db:"month"`
	Revenue float64 `db:"revenue"`
}

// ExportFile файл выгрузки в каталоге exports
type ExportFile struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
