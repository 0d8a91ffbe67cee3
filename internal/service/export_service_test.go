package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

func newTestExportService(t *testing.T, db *sqlx.DB) *ExportService {
	t.Helper()
	return NewExportService(
		filepath.Join(t.TempDir(), "exports"),
		repository.NewStudentRepository(db),
		repository.NewTrainingRepository(db),
		repository.NewAttendanceRepository(db),
		repository.NewPaymentRepository(db),
		zap.NewNop(),
	)
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportStudents(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExportService(t, db)
	seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	seedStudent(t, db, "Анна", "Сидорова", "+7-999-222-33-44")

	path, err := svc.ExportStudents(context.Background(), "students.csv")
	require.NoError(t, err)

	records := readCSVFile(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "first_name", records[0][1])

	var names []string
	for _, row := range records[1:] {
		names = append(names, row[1])
	}
	assert.ElementsMatch(t, []string{"Иван", "Анна"}, names)
}

func TestExportPayments(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExportService(t, db)
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	payment := &model.Payment{
		StudentID:   student.ID,
		Amount:      3500,
		PaymentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentType: model.PaymentTypeMonthly,
	}
	require.NoError(t, repository.NewPaymentRepository(db).Create(ctx, payment))

	path, err := svc.ExportPayments(ctx, "payments.csv")
	require.NoError(t, err)

	records := readCSVFile(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "Иван Иванов", records[1][1])
	assert.Equal(t, "3500", records[1][3])
	assert.Equal(t, "Monthly", records[1][4])
}

func TestExportAll(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExportService(t, db)
	seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")

	paths, err := svc.ExportAll(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 4)
	for _, kind := range []string{"students", "trainings", "attendance", "payments"} {
		require.Contains(t, paths, kind)
		assert.FileExists(t, paths[kind])
		assert.Contains(t, filepath.Base(paths[kind]), "bjj_crm_export_")
	}
}

func TestExportSummaryReport(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExportService(t, db)
	student := seedStudent(t, db, "Иван", "Иванов", "+7-999-111-22-33")
	ctx := context.Background()

	payment := &model.Payment{
		StudentID:   student.ID,
		Amount:      3500,
		PaymentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentType: model.PaymentTypeMonthly,
	}
	require.NoError(t, repository.NewPaymentRepository(db).Create(ctx, payment))

	path, err := svc.ExportSummaryReport(ctx, "summary.csv")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "BJJ Academy CRM - Summary Report")
	assert.Contains(t, report, "Total Students,1")
	assert.Contains(t, report, "Total Revenue,3500")
	assert.Contains(t, report, "White,1")
	assert.Contains(t, report, "2024-03,3500")
}

func TestListExports(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExportService(t, db)

	exports, err := svc.ListExports()
	require.NoError(t, err)
	assert.Empty(t, exports)

	_, err = svc.ExportStudents(context.Background(), "first.csv")
	require.NoError(t, err)
	_, err = svc.ExportStudents(context.Background(), "second.csv")
	require.NoError(t, err)

	// Посторонние файлы в каталоге не попадают в список
	require.NoError(t, os.WriteFile(filepath.Join(svc.exportDir, "notes.txt"), []byte("x"), 0o644))

	exports, err = svc.ListExports()
	require.NoError(t, err)
	require.Len(t, exports, 2)
	for _, e := range exports {
		assert.True(t, strings.HasSuffix(e.Filename, ".csv"))
	}
}
