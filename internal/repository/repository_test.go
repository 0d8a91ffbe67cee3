package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
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

func createStudent(t *testing.T, db *sqlx.DB, firstName, lastName, phone string) *model.Student {
	t.Helper()

	student := &model.Student{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		IsActive:  true,
	}
	require.NoError(t, NewStudentRepository(db).Create(context.Background(), student))
	return student
}

func TestStudentRepositoryCreateDefaults(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	student := &model.Student{FirstName: "Иван", LastName: "Иванов", Phone: "+7-999-111-22-33", IsActive: true}
	require.NoError(t, repo.Create(ctx, student))

	assert.NotZero(t, student.ID)
	assert.Equal(t, model.BeltWhite, student.CurrentBelt)
	assert.False(t, student.RegistrationDate.IsZero())
}

func TestStudentRepositoryNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByPhone(ctx, "+7-000-000-00-00")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByTelegramID(ctx, "@nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStudentRepositoryLookups(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	tg := "@ivanov"
	student := &model.Student{
		FirstName:  "Иван",
		LastName:   "Иванов",
		Phone:      "+7-999-111-22-33",
		TelegramID: &tg,
		IsActive:   true,
	}
	require.NoError(t, repo.Create(ctx, student))

	byPhone, err := repo.GetByPhone(ctx, "+7-999-111-22-33")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	assert.Equal(t, student.ID, byPhone.ID)

	byTG, err := repo.GetByTelegramID(ctx, "@ivanov")
	require.NoError(t, err)
	require.NotNil(t, byTG)
	assert.Equal(t, student.ID, byTG.ID)

	byName, err := repo.GetByName(ctx, "Иван", "Иванов")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, student.ID, byName.ID)
}

func TestStudentRepositoryUpdateBelt(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)
	student := createStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	require.NoError(t, repo.UpdateBelt(ctx, student.ID, model.BeltBlue))

	got, err := repo.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BeltBlue, got.CurrentBelt)
}

func TestStudentRepositoryUpdateMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)

	err := repo.Update(context.Background(), &model.Student{
		ID:        9999,
		FirstName: "Иван",
		LastName:  "Иванов",
		Phone:     "+7-999-111-22-33",
	})
	require.Error(t, err)
}

func TestStudentRepositoryCountByBelt(t *testing.T) {
	db := openTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	createStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	createStudent(t, db, "Пётр", "Петров", "+7-999-222-33-44")
	blue := createStudent(t, db, "Анна", "Сидорова", "+7-999-333-44-55")
	require.NoError(t, repo.UpdateBelt(ctx, blue.ID, model.BeltBlue))

	stats, err := repo.CountByBelt(ctx)
	require.NoError(t, err)

	counts := map[model.Belt]int64{}
	for _, bc := range stats {
		counts[bc.Belt] = bc.Count
	}
	assert.Equal(t, int64(2), counts[model.BeltWhite])
	assert.Equal(t, int64(1), counts[model.BeltBlue])
}

func TestTrainingRepositoryGetByDateAndTrainer(t *testing.T) {
	db := openTestDB(t)
	trainers := NewTrainerRepository(db)
	trainings := NewTrainingRepository(db)
	ctx := context.Background()

	trainer := &model.Trainer{FirstName: "Алексей", LastName: "Смирнов", IsMain: true, IsActive: true}
	require.NoError(t, trainers.Create(ctx, trainer))

	date := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, trainings.Create(ctx, &model.Training{Date: date, TrainerID: trainer.ID}))

	got, err := trainings.GetByDateAndTrainer(ctx, date, trainer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	none, err := trainings.GetByDateAndTrainer(ctx, date.AddDate(0, 0, 1), trainer.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAttendanceRepositoryAbsences(t *testing.T) {
	db := openTestDB(t)
	trainers := NewTrainerRepository(db)
	trainings := NewTrainingRepository(db)
	attendances := NewAttendanceRepository(db)
	ctx := context.Background()

	trainer := &model.Trainer{FirstName: "Алексей", LastName: "Смирнов", IsActive: true}
	require.NoError(t, trainers.Create(ctx, trainer))

	student := createStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	present := createStudent(t, db, "Пётр", "Петров", "+7-999-222-33-44")

	for day := 1; day <= 2; day++ {
		training := &model.Training{
			Date:      time.Date(2024, 3, day, 19, 0, 0, 0, time.UTC),
			TrainerID: trainer.ID,
		}
		require.NoError(t, trainings.Create(ctx, training))

		require.NoError(t, attendances.Create(ctx, &model.Attendance{
			StudentID:  student.ID,
			TrainingID: training.ID,
			Status:     model.AttendanceStatusAbsent,
		}))
		require.NoError(t, attendances.Create(ctx, &model.Attendance{
			StudentID:  present.ID,
			TrainingID: training.ID,
			Status:     model.AttendanceStatusPresent,
		}))
	}

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	count, err := attendances.CountAbsencesSince(ctx, student.ID, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	absent, err := attendances.ListAbsentStudentsSince(ctx, since)
	require.NoError(t, err)
	require.Len(t, absent, 1)
	assert.Equal(t, student.ID, absent[0].ID)
}

func TestPaymentRepositoryMonthlyRevenue(t *testing.T) {
	db := openTestDB(t)
	payments := NewPaymentRepository(db)
	student := createStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	for _, p := range []struct {
		amount float64
		date   time.Time
	}{
		{3500, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{500, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{3500, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	} {
		require.NoError(t, payments.Create(ctx, &model.Payment{
			StudentID:   student.ID,
			Amount:      p.amount,
			PaymentDate: p.date,
			PaymentType: model.PaymentTypeMonthly,
		}))
	}

	total, err := payments.TotalAmount(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 7500, total, 0.001)

	revenue, err := payments.MonthlyRevenue(ctx)
	require.NoError(t, err)

	byMonth := map[string]float64{}
	for _, mr := range revenue {
		byMonth[mr.Month] = mr.Revenue
	}
	assert.InDelta(t, 4000, byMonth["2024-03"], 0.001)
	assert.InDelta(t, 3500, byMonth["2024-04"], 0.001)
}
