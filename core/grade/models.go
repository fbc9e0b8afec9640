package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abdel28fr/ecole-pwa/core"
)

// Exam types
const (
	ExamHomework   = "homework"
	ExamQuiz       = "quiz"
	ExamExam       = "exam"
	ExamContinuous = "continuous"
)

const (
	MinScore = 0
	MaxScore = 10
)

var ExamTypes = []string{ExamHomework, ExamQuiz, ExamExam, ExamContinuous}

type Grade struct {
	ID        int       `json:"id"`
	StudentID int       `json:"studentId"`
	SubjectID int       `json:"subjectId"`
	Score     float64   `json:"score"` // 0 - 10
	ExamType  string    `json:"examType"`
	ExamDate  string    `json:"examDate"` // YYYY-MM-DD
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGrade contains information needed to create a new Grade.
type NewGrade struct {
	StudentID int      `json:"studentId" validate:"required"`
	SubjectID int      `json:"subjectId" validate:"required"`
	Score     *float64 `json:"score" validate:"required,min=0,max=10"`
	ExamType  string   `json:"examType" validate:"required,examtype"`
	ExamDate  string   `json:"examDate" validate:"required,isodate"`
	Notes     string   `json:"notes"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.ExamType = core.CleanString(ng.ExamType, true /* lower */)
	ng.ExamDate = core.CleanString(ng.ExamDate)
	ng.Notes = core.CleanString(ng.Notes)
	return validate.Struct(ng)
}

// SubjectScore is the score of one subject in a BulkGrades entry.
type SubjectScore struct {
	SubjectID int      `json:"subjectId" validate:"required"`
	Score     *float64 `json:"score" validate:"required,min=0,max=10"`
}

// BulkGrades contains the grades of one student in several subjects for the same exam.
type BulkGrades struct {
	StudentID int            `json:"studentId" validate:"required"`
	ExamType  string         `json:"examType" validate:"required,examtype"`
	ExamDate  string         `json:"examDate" validate:"required,isodate"`
	Notes     string         `json:"notes"`
	Scores    []SubjectScore `json:"scores" validate:"required,min=1,dive"`
}

func (bg *BulkGrades) Validate(validate *validator.Validate) error {
	bg.ExamType = core.CleanString(bg.ExamType, true /* lower */)
	bg.ExamDate = core.CleanString(bg.ExamDate)
	bg.Notes = core.CleanString(bg.Notes)
	return validate.Struct(bg)
}

// UpdateGrade defines what information may be provided to modify an existing Grade.
// Empty fields keep their current value.
type UpdateGrade struct {
	StudentID int      `json:"studentId"`
	SubjectID int      `json:"subjectId"`
	Score     *float64 `json:"score" validate:"omitempty,min=0,max=10"`
	ExamType  string   `json:"examType" validate:"omitempty,examtype"`
	ExamDate  string   `json:"examDate" validate:"omitempty,isodate"`
	Notes     *string  `json:"notes"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	ug.ExamType = core.CleanString(ug.ExamType, true /* lower */)
	ug.ExamDate = core.CleanString(ug.ExamDate)
	return validate.Struct(ug)
}

func (ug UpdateGrade) apply(g Grade) Grade {
	if ug.StudentID != 0 {
		g.StudentID = ug.StudentID
	}
	if ug.SubjectID != 0 {
		g.SubjectID = ug.SubjectID
	}
	if ug.Score != nil {
		g.Score = *ug.Score
	}
	if ug.ExamType != "" {
		g.ExamType = ug.ExamType
	}
	if ug.ExamDate != "" {
		g.ExamDate = ug.ExamDate
	}
	if ug.Notes != nil {
		g.Notes = core.CleanString(*ug.Notes)
	}
	return g
}

type QueryFilter struct {
	StudentID int    `query:"studentId"`
	SubjectID int    `query:"subjectId"`
	ClassID   int    `query:"classId"` // through the student
	ExamType  string `query:"examType"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == 0 && qf.SubjectID == 0 && qf.ClassID == 0 && qf.ExamType == ""
}

func (qf *QueryFilter) Clean() {
	qf.ExamType = core.CleanString(qf.ExamType, true /* lower */)
}

// Match applies AND operation on available QueryFilter fields.
// classOf returns the class of a student; it is only called when filtering by class.
func (qf QueryFilter) Match(g Grade, classOf func(studentID int) int) bool {
	if qf.StudentID != 0 && g.StudentID != qf.StudentID {
		return false
	}
	if qf.SubjectID != 0 && g.SubjectID != qf.SubjectID {
		return false
	}
	if qf.ExamType != "" && g.ExamType != qf.ExamType {
		return false
	}
	if qf.ClassID != 0 && classOf(g.StudentID) != qf.ClassID {
		return false
	}
	return true
}
