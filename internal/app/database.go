package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDatabase открывает локальную SQLite базу приложения.
// foreign_keys включаем явно - SQLite по умолчанию их не проверяет.
func OpenDatabase(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_loc=UTC", path)

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Одна файловая база - один писатель
	db.SetMaxOpenConns(1)

	return db, nil
}
