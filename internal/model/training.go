package model

import "time"

type Training struct {
	ID        int64     `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	TrainerID int64     `db:"trainer_id" json:"trainer_id"`
	Notes     *string   `db:"notes" json:"notes"`
}
