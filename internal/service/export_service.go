package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

type ExportService struct {
	exportDir      string
	studentRepo    *repository.StudentRepository
	trainingRepo   *repository.TrainingRepository
	attendanceRepo *repository.AttendanceRepository
	paymentRepo    *repository.PaymentRepository
	logger         *zap.Logger
}

func NewExportService(
	exportDir string,
	studentRepo *repository.StudentRepository,
	trainingRepo *repository.TrainingRepository,
	attendanceRepo *repository.AttendanceRepository,
	paymentRepo *repository.PaymentRepository,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		exportDir:      exportDir,
		studentRepo:    studentRepo,
		trainingRepo:   trainingRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		logger:         logger,
	}
}

// ExportStudents выгружает всех учеников в CSV и возвращает путь к файлу
func (s *ExportService) ExportStudents(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("students_%s.csv", time.Now().Format(backupTimestampLayout))
	}

	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return "", err
	}

	header := []string{"id", "first_name", "last_name", "phone", "telegram_id", "email", "current_belt", "registration_date", "is_active", "notes"}
	rows := make([][]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, []string{
			strconv.FormatInt(st.ID, 10),
			st.FirstName,
			st.LastName,
			st.Phone,
			strDeref(st.TelegramID),
			strDeref(st.Email),
			string(st.CurrentBelt),
			st.RegistrationDate.Format(time.RFC3339),
			strconv.FormatBool(st.IsActive),
			strDeref(st.Notes),
		})
	}

	return s.writeCSV(filename, header, rows)
}

// ExportTrainings выгружает тренировки с именами тренеров
func (s *ExportService) ExportTrainings(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("trainings_%s.csv", time.Now().Format(backupTimestampLayout))
	}

	trainings, err := s.trainingRepo.ListForExport(ctx)
	if err != nil {
		return "", err
	}

	header := []string{"id", "date", "trainer_name", "trainer_phone", "notes"}
	rows := make([][]string, 0, len(trainings))
	for _, t := range trainings {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.Format(time.RFC3339),
			t.TrainerName,
			strDeref(t.TrainerPhone),
			strDeref(t.Notes),
		})
	}

	return s.writeCSV(filename, header, rows)
}

// ExportAttendance выгружает посещаемость с именами учеников и тренеров
func (s *ExportService) ExportAttendance(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("attendance_%s.csv", time.Now().Format(backupTimestampLayout))
	}

	records, err := s.attendanceRepo.ListForExport(ctx)
	if err != nil {
		return "", err
	}

	header := []string{"id", "student_name", "student_phone", "training_date", "trainer_name", "status", "notes"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			rec.StudentName,
			rec.StudentPhone,
			rec.TrainingDate.Format(time.RFC3339),
			rec.TrainerName,
			string(rec.Status),
			strDeref(rec.Notes),
		})
	}

	return s.writeCSV(filename, header, rows)
}

// ExportPayments выгружает платежи с именами учеников
func (s *ExportService) ExportPayments(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("payments_%s.csv", time.Now().Format(backupTimestampLayout))
	}

	payments, err := s.paymentRepo.ListForExport(ctx)
	if err != nil {
		return "", err
	}

	header := []string{"id", "student_name", "student_phone", "amount", "payment_type", "description", "payment_date"}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.StudentName,
			p.StudentPhone,
			strconv.FormatFloat(p.Amount, 'f', -1, 64),
			string(p.PaymentType),
			strDeref(p.Description),
			p.PaymentDate.Format(time.RFC3339),
		})
	}

	return s.writeCSV(filename, header, rows)
}

// ExportAll выгружает все сущности отдельными файлами с общим префиксом
func (s *ExportService) ExportAll(ctx context.Context) (map[string]string, error) {
	base := fmt.Sprintf("bjj_crm_export_%s", time.Now().Format(backupTimestampLayout))
	exports := map[string]string{}

	path, err := s.ExportStudents(ctx, base+"_students.csv")
	if err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}
	exports["students"] = path

	path, err = s.ExportTrainings(ctx, base+"_trainings.csv")
	if err != nil {
		return nil, fmt.Errorf("export trainings: %w", err)
	}
	exports["trainings"] = path

	path, err = s.ExportAttendance(ctx, base+"_attendance.csv")
	if err != nil {
		return nil, fmt.Errorf("export attendance: %w", err)
	}
	exports["attendance"] = path

	path, err = s.ExportPayments(ctx, base+"_payments.csv")
	if err != nil {
		return nil, fmt.Errorf("export payments: %w", err)
	}
	exports["payments"] = path

	return exports, nil
}

// ExportSummaryReport собирает сводный отчёт: общие показатели,
// распределение по поясам и выручка по месяцам
func (s *ExportService) ExportSummaryReport(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("summary_report_%s.csv", time.Now().Format(backupTimestampLayout))
	}

	totalStudents, err := s.studentRepo.Count(ctx)
	if err != nil {
		return "", err
	}
	totalTrainings, err := s.trainingRepo.Count(ctx)
	if err != nil {
		return "", err
	}
	totalPayments, err := s.paymentRepo.Count(ctx)
	if err != nil {
		return "", err
	}
	totalRevenue, err := s.paymentRepo.TotalAmount(ctx)
	if err != nil {
		return "", err
	}
	beltStats, err := s.studentRepo.CountByBelt(ctx)
	if err != nil {
		return "", err
	}
	monthlyRevenue, err := s.paymentRepo.MonthlyRevenue(ctx)
	if err != nil {
		return "", err
	}

	rows := [][]string{
		{"BJJ Academy CRM - Summary Report"},
		{"Generated:", time.Now().Format(time.RFC3339)},
		{},
		{"General Statistics"},
		{"Total Students", strconv.FormatInt(totalStudents, 10)},
		{"Total Trainings", strconv.FormatInt(totalTrainings, 10)},
		{"Total Payments", strconv.FormatInt(totalPayments, 10)},
		{"Total Revenue", strconv.FormatFloat(totalRevenue, 'f', -1, 64)},
		{},
		{"Students by Belt"},
		{"Belt", "Count"},
	}
	for _, bc := range beltStats {
		rows = append(rows, []string{string(bc.Belt), strconv.FormatInt(bc.Count, 10)})
	}
	rows = append(rows, []string{}, []string{"Monthly Revenue"}, []string{"Month", "Revenue"})
	for _, mr := range monthlyRevenue {
		rows = append(rows, []string{mr.Month, strconv.FormatFloat(mr.Revenue, 'f', -1, 64)})
	}

	return s.writeCSV(filename, nil, rows)
}

// ListExports возвращает файлы выгрузок, новые первыми
func (s *ExportService) ListExports() ([]model.ExportFile, error) {
	entries, err := os.ReadDir(s.exportDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read export dir: %w", err)
	}

	var exports []model.ExportFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		exports = append(exports, model.ExportFile{
			Filename: e.Name(),
			Path:     filepath.Join(s.exportDir, e.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(exports, func(i, j int) bool {
		return exports[i].Modified.After(exports[j].Modified)
	})

	return exports, nil
}

func (s *ExportService) writeCSV(filename string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(s.exportDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			return "", fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("Export written", zap.String("path", path), zap.Int("rows", len(rows)))
	return path, nil
}

func strDeref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
