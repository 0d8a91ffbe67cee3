package model

import "time"

type Belt string

const (
	BeltWhite  Belt = "White"
	BeltBlue   Belt = "Blue"
	BeltPurple Belt = "Purple"
	BeltBrown  Belt = "Brown"
	BeltBlack  Belt = "Black"
)

type Student struct {
	ID               int64     `db:"id" json:"id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Phone            string    `db:"phone" json:"phone"`
	TelegramID       *string   `db:"telegram_id" json:"telegram_id"` // указатель - может быть nil
	Email            *string   `db:"email" json:"email"`
	CurrentBelt      Belt      `db:"current_belt" json:"current_belt"`
	RegistrationDate time.Time `db:"registration_date" json:"registration_date"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	Notes            *string   `db:"notes" json:"notes"`
}

// FullName возвращает полное имя ученика ("Имя Фамилия")
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
