package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
)

const recentStudentsCount = 5

type (
	Repository interface {
		LoadDataset(ctx context.Context) (Dataset, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (svc *Service) StudentReport(ctx context.Context, studentID int) (StudentReport, error) {
	ds, err := svc.repo.LoadDataset(ctx)
	if err != nil {
		return StudentReport{}, err
	}
	for _, std := range ds.Students {
		if std.ID == studentID {
			return buildStudentReport(ds, std), nil
		}
	}
	return StudentReport{}, student.ErrNotFound
}

func (svc *Service) ClassReport(ctx context.Context, classID int) (ClassReport, error) {
	ds, err := svc.repo.LoadDataset(ctx)
	if err != nil {
		return ClassReport{}, err
	}
	cls, ok := ds.classByID(classID)
	if !ok {
		return ClassReport{}, class.ErrNotFound
	}
	return buildClassReport(ds, cls), nil
}

// ClassTable returns the ranking of a class as spreadsheet rows: a sheet name, a header and one row per student.
func (svc *Service) ClassTable(ctx context.Context, classID int) (string, []string, [][]interface{}, error) {
	cr, err := svc.ClassReport(ctx, classID)
	if err != nil {
		return "", nil, nil, err
	}

	header := []string{"Rank", "Student"}
	var subjects []subject.Subject
	if len(cr.Students) > 0 {
		for _, sr := range cr.Students[0].Subjects {
			subjects = append(subjects, sr.Subject)
			header = append(header, fmt.Sprintf("%s (x%d)", sr.Subject.Code, sr.Subject.Coefficient))
		}
	}
	header = append(header, "General average", "Appreciation")

	rows := make([][]interface{}, 0, len(cr.Students))
	for _, sr := range cr.Students {
		row := []interface{}{sr.Rank, sr.Student.FullName}
		for i := range subjects {
			row = append(row, sr.Subjects[i].Average)
		}
		row = append(row, sr.GeneralAverage, sr.Appreciation)
		rows = append(rows, row)
	}
	return cr.Class.Name, header, rows, nil
}

func (svc *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	ds, err := svc.repo.LoadDataset(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return buildDashboard(ds, svc.now()), nil
}

func buildStudentReport(ds Dataset, std student.Student) StudentReport {
	rep := StudentReport{
		Student:  std,
		Subjects: make([]SubjectReport, 0, len(ds.Subjects)),
		Note:     ds.Notes[std.ID],
	}
	if cls, ok := ds.classByID(std.ClassID); ok {
		rep.Class = &cls
	}

	var grades []grade.Grade
	for _, g := range ds.Grades {
		if g.StudentID == std.ID {
			grades = append(grades, g)
		}
	}
	bySubject := grade.BySubject(grades)
	for _, sub := range ds.Subjects {
		subGrades := bySubject[sub.ID]
		sr := SubjectReport{
			Subject:    sub,
			Grades:     subGrades,
			GradeCount: len(subGrades),
		}
		if sr.Grades == nil {
			sr.Grades = []grade.Grade{}
		}
		if len(subGrades) > 0 {
			sr.Average = core.Round2(grade.Mean(subGrades))
			sr.Appreciation = grade.AppreciationFor(sr.Average)
		}
		rep.Subjects = append(rep.Subjects, sr)
	}

	rep.TotalGrades = len(grades)
	rep.GeneralAverage = grade.GeneralAverage(grades, ds.Subjects)
	rep.Appreciation = grade.AppreciationFor(rep.GeneralAverage)
	return rep
}

func buildClassReport(ds Dataset, cls class.Class) ClassReport {
	cr := ClassReport{Class: cls, Students: []StudentReport{}}
	var sum float64
	for _, std := range ds.Students {
		if std.ClassID != cls.ID {
			continue
		}
		sr := buildStudentReport(ds, std)
		sum += sr.GeneralAverage
		cr.Students = append(cr.Students, sr)
	}
	sort.SliceStable(cr.Students, func(i, j int) bool {
		return cr.Students[i].GeneralAverage > cr.Students[j].GeneralAverage
	})
	for i := range cr.Students {
		cr.Students[i].Rank = i + 1
	}

	cr.TotalStudents = len(cr.Students)
	if cr.TotalStudents > 0 {
		cr.ClassAverage = core.Round2(sum / float64(cr.TotalStudents))
	}
	return cr
}

func buildDashboard(ds Dataset, now time.Time) Dashboard {
	db := Dashboard{
		Totals: Totals{
			Students:     len(ds.Students),
			Classes:      len(ds.Classes),
			Subjects:     len(ds.Subjects),
			Grades:       len(ds.Grades),
			AverageGrade: core.Round2(grade.Mean(ds.Grades)),
		},
	}

	recent := make([]student.Student, len(ds.Students))
	copy(recent, ds.Students)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentStudentsCount {
		recent = recent[:recentStudentsCount]
	}
	db.RecentStudents = recent

	db.ClassStats = class.ComputeStats(ds.Classes, ds.Students)

	year, month := now.Year(), now.Month()
	db.PaymentStats = payment.ComputeMonthStats(ds.Payments, int(month), year)

	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	db.FinanceStats = finance.ComputeTotals(ds.Transactions, core.Today(first), core.Today(last))
	return db
}
