package backup

import (
	"time"

	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
)

// Version of the backup format.
const Version = "1.0"

// Collection names, as they appear in the backup data.
const (
	Students            = "students"
	Classes             = "classes"
	Subjects            = "subjects"
	Grades              = "grades"
	Payments            = "payments"
	FinanceCategories   = "financeCategories"
	FinanceTransactions = "financeTransactions"
	AppSettings         = "settings"
	UISettings          = "uiSettings"
	StudentNotes        = "studentNotes"
)

var (
	// arrayCollections are restored only when one of them is not empty.
	arrayCollections  = []string{Students, Classes, Subjects, Grades, Payments, FinanceCategories, FinanceTransactions}
	objectCollections = []string{AppSettings, UISettings, StudentNotes}
)

type Backup struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      Data      `json:"data"`
	Metadata  Metadata  `json:"metadata"`
}

// Data holds the collections of a backup. When restoring, nil fields are collections absent from the file
// and are left untouched.
type Data struct {
	Students            []student.Student     `json:"students"`
	Classes             []class.Class         `json:"classes"`
	Subjects            []subject.Subject     `json:"subjects"`
	Grades              []grade.Grade         `json:"grades"`
	Payments            []payment.Payment     `json:"payments"`
	FinanceCategories   []finance.Category    `json:"financeCategories"`
	FinanceTransactions []finance.Transaction `json:"financeTransactions"`
	Settings            *settings.Settings    `json:"settings"`
	UISettings          settings.UISettings   `json:"uiSettings"`
	StudentNotes        map[int]string        `json:"studentNotes"`
}

type Metadata struct {
	TotalStudents     int `json:"totalStudents"`
	TotalClasses      int `json:"totalClasses"`
	TotalSubjects     int `json:"totalSubjects"`
	TotalGrades       int `json:"totalGrades"`
	TotalPayments     int `json:"totalPayments"`
	TotalTransactions int `json:"totalTransactions"`
}

func newMetadata(d Data) Metadata {
	return Metadata{
		TotalStudents:     len(d.Students),
		TotalClasses:      len(d.Classes),
		TotalSubjects:     len(d.Subjects),
		TotalGrades:       len(d.Grades),
		TotalPayments:     len(d.Payments),
		TotalTransactions: len(d.FinanceTransactions),
	}
}

// ValidationResult is the outcome of checking a backup file before restoring it.
type ValidationResult struct {
	IsValid  bool                   `json:"isValid"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
	Info     map[string]interface{} `json:"info"`
}

func (vr *ValidationResult) addError(msg string) {
	vr.Errors = append(vr.Errors, msg)
	vr.IsValid = false
}

func (vr *ValidationResult) addWarning(msg string) {
	vr.Warnings = append(vr.Warnings, msg)
}

// Summary tells what a restore replaced.
type Summary struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Restored  []string       `json:"restored"` // collection names
	Counts    map[string]int `json:"counts"`   // array collections only
}
