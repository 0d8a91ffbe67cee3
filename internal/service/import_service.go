package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/repository"
)

// placeholderTelegramIDs значения из шаблона, которые нельзя записывать
// как реальные telegram_id: уникальный индекс превратил бы их в ложные коллизии
var placeholderTelegramIDs = map[string]bool{
	"@xyz":     true,
	"@test":    true,
	"@example": true,
}

type ImportService struct {
	db           *sqlx.DB
	studentRepo  *repository.StudentRepository
	trainerRepo  *repository.TrainerRepository
	trainingRepo *repository.TrainingRepository
	paymentRepo  *repository.PaymentRepository
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewImportService(
	db *sqlx.DB,
	studentRepo *repository.StudentRepository,
	trainerRepo *repository.TrainerRepository,
	trainingRepo *repository.TrainingRepository,
	paymentRepo *repository.PaymentRepository,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		db:           db,
		studentRepo:  studentRepo,
		trainerRepo:  trainerRepo,
		trainingRepo: trainingRepo,
		paymentRepo:  paymentRepo,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// DetectEncoding определяет кодировку файла
func (s *ImportService) DetectEncoding(path string) string {
	return detectEncoding(path)
}

// ValidateFile проверяет формат локального CSV файла перед импортом
func (s *ImportService) ValidateFile(path string, target model.ImportTarget) model.ValidationResult {
	content, enc, err := s.readFile(path)
	if err != nil {
		return model.ValidationResult{Valid: false, Err: fmt.Sprintf("Ошибка чтения файла: %v", err)}
	}

	table, err := readTable(content)
	if err != nil {
		return model.ValidationResult{Valid: false, Err: fmt.Sprintf("Ошибка чтения файла: %v", err)}
	}
	table.encoding = enc

	return validateTable(table, target)
}

// ValidateURL проверяет формат CSV по ссылке (включая ссылки Google Sheets)
func (s *ImportService) ValidateURL(ctx context.Context, rawURL string, target model.ImportTarget) model.ValidationResult {
	content, err := s.fetchCSV(ctx, rawURL)
	if err != nil {
		return model.ValidationResult{Valid: false, Err: fmt.Sprintf("Ошибка загрузки данных: %v", err)}
	}

	table, err := readTable(content)
	if err != nil {
		return model.ValidationResult{Valid: false, Err: fmt.Sprintf("Ошибка чтения данных: %v", err)}
	}

	return validateTable(table, target)
}

// ImportFile импортирует данные из локального CSV файла
func (s *ImportService) ImportFile(ctx context.Context, path string, target model.ImportTarget, policy model.DedupePolicy) (*model.ImportResult, error) {
	content, enc, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	s.logger.Info("Importing CSV file",
		zap.String("path", path),
		zap.String("encoding", enc),
		zap.String("target", string(target)))

	return s.importContent(ctx, content, target, policy)
}

// ImportURL импортирует данные по ссылке (включая ссылки Google Sheets)
func (s *ImportService) ImportURL(ctx context.Context, rawURL string, target model.ImportTarget, policy model.DedupePolicy) (*model.ImportResult, error) {
	content, err := s.fetchCSV(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch import url: %w", err)
	}

	s.logger.Info("Importing CSV from URL",
		zap.String("url", rawURL),
		zap.String("target", string(target)))

	return s.importContent(ctx, content, target, policy)
}

func (s *ImportService) readFile(path string) (content, enc string, err error) {
	enc = detectEncoding(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	content, err = decodeBytes(data, enc)
	if err != nil {
		return "", "", err
	}
	return content, enc, nil
}

func (s *ImportService) fetchCSV(ctx context.Context, rawURL string) (string, error) {
	csvURL, err := ConvertToCSVURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download csv: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return decodeBytes(data, detectEncodingBytes(data))
}

// importContent проводит один импорт в одной транзакции:
// построчные ошибки копятся в результате, ошибка уровня БД откатывает весь батч
func (s *ImportService) importContent(ctx context.Context, content string, target model.ImportTarget, policy model.DedupePolicy) (*model.ImportResult, error) {
	table, err := readTable(content)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	if validation := validateTable(table, target); !validation.Valid {
		return nil, fmt.Errorf("невалидный CSV: %s", validation.Err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.importTable(ctx, tx, table, target, policy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("Import finished",
		zap.String("batch_id", res.BatchID.String()),
		zap.Int("imported", res.Imported),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("row_errors", len(res.Errors)))

	return res, nil
}

// rowImportFunc обрабатывает одну строку данных. Возвращённая ошибка
// означает сбой уровня БД и прерывает весь батч; ошибки данных строка
// добавляет в результат сама.
type rowImportFunc func(ctx context.Context, rowNum int, row map[string]string, res *model.ImportResult) error

func (s *ImportService) importTable(ctx context.Context, tx *sqlx.Tx, table *csvTable, target model.ImportTarget, policy model.DedupePolicy) (*model.ImportResult, error) {
	res := &model.ImportResult{
		BatchID:   uuid.New(),
		TotalRows: len(table.rows),
		Errors:    []string{},
	}

	// Обработчик выбирается один раз на весь импорт
	var importRow rowImportFunc
	switch target {
	case model.ImportTargetStudents:
		imp := &studentRowImporter{students: s.studentRepo.WithTx(tx), policy: policy}
		importRow = imp.importRow
	case model.ImportTargetTrainings:
		imp := &trainingRowImporter{trainers: s.trainerRepo.WithTx(tx), trainings: s.trainingRepo.WithTx(tx)}
		importRow = imp.importRow
	case model.ImportTargetPayments:
		imp := &paymentRowImporter{students: s.studentRepo.WithTx(tx), payments: s.paymentRepo.WithTx(tx)}
		importRow = imp.importRow
	default:
		return nil, fmt.Errorf("unsupported import target: %s", target)
	}

	for i := range table.rows {
		// Нумерация строк данных с единицы, как их видит пользователь в таблице
		if err := importRow(ctx, i+1, table.rowMap(i), res); err != nil {
			return nil, err
		}
	}

	res.Success = true
	return res, nil
}

type studentRowImporter struct {
	students *repository.StudentRepository
	policy   model.DedupePolicy
}

func (imp *studentRowImporter) importRow(ctx context.Context, rowNum int, row map[string]string, res *model.ImportResult) error {
	firstName := row["first_name"]
	lastName := row["last_name"]
	phone := row["phone"]
	telegramID := row["telegram_id"]

	if firstName == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Имя не может быть пустым", rowNum))
		return nil
	}
	if lastName == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Фамилия не может быть пустой", rowNum))
		return nil
	}
	if phone == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Телефон не может быть пустым", rowNum))
		return nil
	}

	// Ищем существующего ученика: сначала по телефону, затем по telegram_id
	existing, err := imp.students.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if existing == nil && telegramID != "" {
		existing, err = imp.students.GetByTelegramID(ctx, telegramID)
		if err != nil {
			return err
		}
	}

	if existing != nil {
		if imp.policy == model.DedupeSkip {
			res.Skipped++
			return nil
		}

		// Обновляем изменяемые поля найденной записи
		existing.FirstName = firstName
		existing.LastName = lastName
		existing.Phone = phone
		existing.Email = optString(row["email"])
		if belt := row["current_belt"]; belt != "" {
			existing.CurrentBelt = model.Belt(belt)
		}
		existing.Notes = optString(row["notes"])
		// telegram_id сохраняем, если новое значение пустое или не отличается
		if telegramID != "" && (existing.TelegramID == nil || *existing.TelegramID != telegramID) {
			existing.TelegramID = &telegramID
		}

		if err := imp.students.Update(ctx, existing); err != nil {
			return err
		}
		res.Updated++
		return nil
	}

	student := &model.Student{
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       phone,
		TelegramID:  cleanTelegramID(telegramID),
		Email:       optString(row["email"]),
		CurrentBelt: beltOrDefault(row["current_belt"]),
		IsActive:    true,
		Notes:       optString(row["notes"]),
	}
	if err := imp.students.Create(ctx, student); err != nil {
		return err
	}
	res.Imported++
	return nil
}

type trainingRowImporter struct {
	trainers  *repository.TrainerRepository
	trainings *repository.TrainingRepository
}

func (imp *trainingRowImporter) importRow(ctx context.Context, rowNum int, row map[string]string, res *model.ImportResult) error {
	dateStr := row["date"]
	if dateStr == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Отсутствует дата тренировки", rowNum))
		return nil
	}

	date, err := parseISODate(dateStr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Неверный формат даты", rowNum))
		return nil
	}

	firstName, lastName, ok := splitName(row["trainer_name"])
	if !ok {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Тренер не найден", rowNum))
		return nil
	}

	trainer, err := imp.trainers.GetByName(ctx, firstName, lastName)
	if err != nil {
		return err
	}
	if trainer == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Тренер не найден", rowNum))
		return nil
	}

	existing, err := imp.trainings.GetByDateAndTrainer(ctx, date, trainer.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Тренировка уже существует", rowNum))
		return nil
	}

	training := &model.Training{
		Date:      date,
		TrainerID: trainer.ID,
		Notes:     optString(row["notes"]),
	}
	if err := imp.trainings.Create(ctx, training); err != nil {
		return err
	}
	res.Imported++
	return nil
}

type paymentRowImporter struct {
	students *repository.StudentRepository
	payments *repository.PaymentRepository
}

func (imp *paymentRowImporter) importRow(ctx context.Context, rowNum int, row map[string]string, res *model.ImportResult) error {
	studentName := row["student_name"]
	amountStr := row["amount"]

	if studentName == "" || amountStr == "" {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Отсутствует имя ученика или сумма", rowNum))
		return nil
	}

	firstName, lastName, ok := splitName(studentName)
	if !ok {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Неверный формат имени ученика", rowNum))
		return nil
	}

	student, err := imp.students.GetByName(ctx, firstName, lastName)
	if err != nil {
		return err
	}
	if student == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Ученик не найден", rowNum))
		return nil
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Строка %d: Неверный формат суммы", rowNum))
		return nil
	}

	// Неразборчивая дата платежа не бракует строку - берём текущее время
	paymentDate := time.Now().UTC()
	if ds := row["payment_date"]; ds != "" {
		if parsed, err := parseISODate(ds); err == nil {
			paymentDate = parsed
		}
	}

	paymentType := model.PaymentTypeMonthly
	if v := row["payment_type"]; v != "" {
		paymentType = model.PaymentType(v)
	}

	payment := &model.Payment{
		StudentID:   student.ID,
		Amount:      amount,
		PaymentDate: paymentDate,
		PaymentType: paymentType,
		Description: optString(row["description"]),
	}
	if err := imp.payments.Create(ctx, payment); err != nil {
		return err
	}
	res.Imported++
	return nil
}

// Template возвращает шаблон CSV для импорта учеников
func (s *ImportService) Template() string {
	rows := [][]string{
		{"first_name", "last_name", "phone", "telegram_id", "email", "current_belt", "notes"},
		{"Иван", "Иванов", "+7-999-123-45-67", "@ivanov", "ivan@example.com", "White", "Начинающий ученик"},
		{"Петр", "Петров", "+7-999-234-56-78", "@petrov", "petr@example.com", "Blue", "Опытный ученик"},
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(cell)
			b.WriteByte('"')
		}
	}
	return b.String()
}

// ExportTemplate сохраняет шаблон импорта в файл
func (s *ImportService) ExportTemplate(path string) error {
	if err := os.WriteFile(path, []byte(s.Template()), 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

// csvTable разобранный CSV с заголовком
type csvTable struct {
	headers   []string
	rows      [][]string
	delimiter rune
	encoding  string
}

// rowMap отображает строку данных в пары заголовок-значение с обрезкой пробелов
func (t *csvTable) rowMap(i int) map[string]string {
	row := t.rows[i]
	m := make(map[string]string, len(t.headers))
	for j, h := range t.headers {
		if j < len(row) {
			m[h] = strings.TrimSpace(row[j])
		} else {
			m[h] = ""
		}
	}
	return m
}

// readTable разбирает содержимое CSV, подобрав разделитель по первой строке
func readTable(content string) (*csvTable, error) {
	delimiter := sniffDelimiter(content)

	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	table := &csvTable{delimiter: delimiter}
	if len(records) == 0 {
		return table, nil
	}

	headers := records[0]
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF") // BOM
		}
		table.headers = append(table.headers, h)
	}
	table.rows = records[1:]

	return table, nil
}

// validateTable проверяет наличие заголовка и обязательных колонок
func validateTable(table *csvTable, target model.ImportTarget) model.ValidationResult {
	if !target.Valid() {
		return model.ValidationResult{Valid: false, Err: fmt.Sprintf("Неподдерживаемый тип данных: %s", target)}
	}

	if len(table.headers) == 0 {
		return model.ValidationResult{Valid: false, Err: "CSV файл не содержит заголовков"}
	}

	present := make(map[string]bool, len(table.headers))
	for _, h := range table.headers {
		present[h] = true
	}

	var missing []string
	for _, col := range target.RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return model.ValidationResult{
			Valid:   false,
			Headers: table.headers,
			Err:     "Отсутствуют обязательные колонки: " + strings.Join(missing, ", "),
		}
	}

	return model.ValidationResult{
		Valid:     true,
		Headers:   table.headers,
		RowCount:  len(table.rows),
		Delimiter: table.delimiter,
		Encoding:  table.encoding,
	}
}

// isoDateLayouts принимаемые варианты ISO-8601
var isoDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// splitName разбивает "Имя Фамилия" на части
func splitName(full string) (firstName, lastName string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) != 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSpace(parts[1]), true
}

// cleanTelegramID отбрасывает пустые значения и местозаполнители из шаблона
func cleanTelegramID(id string) *string {
	if id == "" || placeholderTelegramIDs[id] {
		return nil
	}
	return &id
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func beltOrDefault(v string) model.Belt {
	if v == "" {
		return model.BeltWhite
	}
	return model.Belt(v)
}
