package model

import "time"

type ExamResult string

const (
	ExamResultPass ExamResult = "Pass"
	ExamResultFail ExamResult = "Fail"
)

type BeltExam struct {
	ID        int64      `db:"id" json:"id"`
	StudentID int64      `db:"student_id" json:"student_id"`
	BeltColor Belt       `db:"belt_color" json:"belt_color"`
	ExamDate  time.Time  `db:"exam_date" json:"exam_date"`
	Result    ExamResult `db:"result" json:"result"`
	Notes     *string    `db:"notes" json:"notes"`
}
