package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

func TestStudentServiceRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(repository.NewStudentRepository(db), zap.NewNop())
	ctx := context.Background()

	student := &model.Student{FirstName: "Иван", LastName: "Иванов", Phone: "+7-999-111-22-33"}
	require.NoError(t, svc.Register(ctx, student))
	assert.NotZero(t, student.ID)
	assert.Equal(t, model.BeltWhite, student.CurrentBelt)

	// Телефон уникален
	dup := &model.Student{FirstName: "Пётр", LastName: "Петров", Phone: "+7-999-111-22-33"}
	err := svc.Register(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Обязательные поля
	err = svc.Register(ctx, &model.Student{FirstName: "Иван"})
	require.Error(t, err)
}

func TestStudentServiceDeactivate(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(repository.NewStudentRepository(db), zap.NewNop())
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	require.NoError(t, svc.Deactivate(ctx, student.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	err = svc.Deactivate(ctx, 9999)
	require.Error(t, err)
}

func TestSubscriptionServiceCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db), zap.NewNop())
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := &model.Subscription{
		StudentID: student.ID,
		Type:      model.SubscriptionTypeMonthly,
		StartDate: start,
		Price:     3500,
	}
	require.NoError(t, svc.Create(ctx, sub))

	// Месячный абонемент без явного окончания действует 30 дней
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, start.AddDate(0, 0, 30), *sub.EndDate)

	got, err := svc.GetActive(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)
}

func TestSubscriptionServiceDeactivateExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db), zap.NewNop())
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	expired := &model.Subscription{
		StudentID: student.ID,
		Type:      model.SubscriptionTypeMonthly,
		StartDate: time.Now().UTC().AddDate(0, 0, -60),
	}
	require.NoError(t, svc.Create(ctx, expired))

	count, err := svc.DeactivateExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := svc.GetActive(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBeltExamServiceRecord(t *testing.T) {
	db := newTestDB(t)
	students := repository.NewStudentRepository(db)
	svc := NewBeltExamService(db, repository.NewBeltExamRepository(db), students, zap.NewNop())
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	exam := &model.BeltExam{
		StudentID: student.ID,
		BeltColor: model.BeltBlue,
		ExamDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Result:    model.ExamResultPass,
	}
	require.NoError(t, svc.Record(ctx, exam))

	// Сданный экзамен меняет текущий пояс
	got, err := students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BeltBlue, got.CurrentBelt)

	history, err := svc.History(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestBeltExamServiceFailKeepsBelt(t *testing.T) {
	db := newTestDB(t)
	students := repository.NewStudentRepository(db)
	svc := NewBeltExamService(db, repository.NewBeltExamRepository(db), students, zap.NewNop())
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	exam := &model.BeltExam{
		StudentID: student.ID,
		BeltColor: model.BeltBlue,
		ExamDate:  time.Now().UTC(),
		Result:    model.ExamResultFail,
	}
	require.NoError(t, svc.Record(ctx, exam))

	got, err := students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BeltWhite, got.CurrentBelt)

	err = svc.Record(ctx, &model.BeltExam{StudentID: 9999, BeltColor: model.BeltBlue, Result: model.ExamResultPass})
	require.Error(t, err)
}
