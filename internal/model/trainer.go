package model

type Trainer struct {
	ID        int64   `db:"id" json:"id"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Phone     *string `db:"phone" json:"phone"`
	Email     *string `db:"email" json:"email"`
	IsMain    bool    `db:"is_main" json:"is_main"` // true - основной, false - резервный
	IsActive  bool    `db:"is_active" json:"is_active"`
}

// FullName возвращает полное имя тренера
func (t *Trainer) FullName() string {
	return t.FirstName + " " + t.LastName
}
