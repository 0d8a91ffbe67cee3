package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

// newTestDB поднимает чистую базу во временном каталоге и применяет миграции
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Connect("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_loc=UTC", path))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db.DB, "../../migrations"))

	return db
}

func newTestImportService(t *testing.T, db *sqlx.DB) *ImportService {
	t.Helper()
	return NewImportService(
		db,
		repository.NewStudentRepository(db),
		repository.NewTrainerRepository(db),
		repository.NewTrainingRepository(db),
		repository.NewPaymentRepository(db),
		zap.NewNop(),
	)
}

func seedTrainer(t *testing.T, db *sqlx.DB, firstName, lastName string) *model.Trainer {
	t.Helper()

	trainer := &model.Trainer{
		FirstName: firstName,
		LastName:  lastName,
		IsMain:    true,
		IsActive:  true,
	}
	require.NoError(t, repository.NewTrainerRepository(db).Create(context.Background(), trainer))
	return trainer
}

func seedStudent(t *testing.T, db *sqlx.DB, firstName, lastName, phone string) *model.Student {
	t.Helper()

	student := &model.Student{
		FirstName:        firstName,
		LastName:         lastName,
		Phone:            phone,
		CurrentBelt:      model.BeltWhite,
		RegistrationDate: time.Now().UTC(),
		IsActive:         true,
	}
	require.NoError(t, repository.NewStudentRepository(db).Create(context.Background(), student))
	return student
}
