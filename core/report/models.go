package report

import (
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
)

// Dataset is a consistent snapshot of the collections reports are computed from.
type Dataset struct {
	Students     []student.Student
	Classes      []class.Class
	Subjects     []subject.Subject
	Grades       []grade.Grade
	Payments     []payment.Payment
	Transactions []finance.Transaction
	Notes        map[int]string // by student ID
}

func (ds Dataset) classByID(id int) (class.Class, bool) {
	for _, cls := range ds.Classes {
		if cls.ID == id {
			return cls, true
		}
	}
	return class.Class{}, false
}

type SubjectReport struct {
	Subject      subject.Subject `json:"subject"`
	Grades       []grade.Grade   `json:"grades"`
	Average      float64         `json:"average"` // out of 10, 0 without grades
	GradeCount   int             `json:"gradeCount"`
	Appreciation string          `json:"appreciation,omitempty"`
}

type StudentReport struct {
	Student        student.Student `json:"student"`
	Class          *class.Class    `json:"class"`
	Subjects       []SubjectReport `json:"subjects"`
	GeneralAverage float64         `json:"generalAverage"`
	Appreciation   string          `json:"appreciation"`
	TotalGrades    int             `json:"totalGrades"`
	Note           string          `json:"note"`
	Rank           int             `json:"rank,omitempty"` // in class reports only
}

type ClassReport struct {
	Class         class.Class     `json:"class"`
	Students      []StudentReport `json:"students"` // best average first
	ClassAverage  float64         `json:"classAverage"`
	TotalStudents int             `json:"totalStudents"`
}

type (
	Totals struct {
		Students     int     `json:"totalStudents"`
		Classes      int     `json:"totalClasses"`
		Subjects     int     `json:"totalSubjects"`
		Grades       int     `json:"totalGrades"`
		AverageGrade float64 `json:"averageGrade"`
	}

	Dashboard struct {
		Totals
		RecentStudents []student.Student  `json:"recentStudents"`
		ClassStats     []class.Stats      `json:"classStats"`
		PaymentStats   payment.MonthStats `json:"paymentStats"`
		FinanceStats   finance.Totals     `json:"financeStats"`
	}
)
