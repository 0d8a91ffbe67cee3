package model

import "github.com/google/uuid"

// ImportTarget определяет тип импортируемых данных
type ImportTarget string

const (
	ImportTargetStudents  ImportTarget = "students"
	ImportTargetTrainings ImportTarget = "trainings"
	ImportTargetPayments  ImportTarget = "payments"
)

// RequiredColumns возвращает обязательные колонки CSV для данного типа
func (t ImportTarget) RequiredColumns() []string {
	switch t {
	case ImportTargetStudents:
		return []string{"first_name", "last_name", "phone"}
	case ImportTargetTrainings:
		return []string{"date", "trainer_name"}
	case ImportTargetPayments:
		return []string{"student_name", "amount"}
	}
	return nil
}

// Valid проверяет что тип импорта поддерживается
func (t ImportTarget) Valid() bool {
	switch t {
	case ImportTargetStudents, ImportTargetTrainings, ImportTargetPayments:
		return true
	}
	return false
}

// DedupePolicy определяет поведение при совпадении с существующей записью
type DedupePolicy string

const (
	// DedupeSkip пропускает дубликаты (импорт из локального файла)
	DedupeSkip DedupePolicy = "skip"
	// DedupeUpdate обновляет найденную запись (импорт из Google Sheets)
	DedupeUpdate DedupePolicy = "update"
)

// ValidationResult результат проверки формата CSV перед импортом
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Headers   []string `json:"headers,omitempty"`
	RowCount  int      `json:"row_count"`
	Delimiter rune     `json:"-"`
	Encoding  string   `json:"encoding,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// ImportResult итог одного запуска импорта
type ImportResult struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Imported  int       `json:"imported_count"`
	Updated   int       `json:"updated_count"`
	Skipped   int       `json:"skipped_count"`
	TotalRows int       `json:"total_rows"`
	Errors    []string  `json:"errors"`
	// Success означает что батч зафиксирован в базе.
	// Отбракованные строки лежат в Errors и его не сбрасывают.
	Success bool `json:"success"`
}
