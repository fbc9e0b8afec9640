package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/payment"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/core/subject"
)

type datasetRepo Dataset

func (r datasetRepo) LoadDataset(context.Context) (Dataset, error) { return Dataset(r), nil }

func day(d int) time.Time { return time.Date(2024, 9, d, 8, 0, 0, 0, time.UTC) }

func testDataset() Dataset {
	return Dataset{
		Classes: []class.Class{
			{ID: 1, Name: "CM1", Level: "Primary", Capacity: 2},
			{ID: 2, Name: "CM2", Level: "Primary", Capacity: 10},
		},
		Subjects: []subject.Subject{
			{ID: 1, Name: "Mathematics", Code: "MATH", Coefficient: 3},
			{ID: 2, Name: "Arabic", Code: "ARAB", Coefficient: 1},
		},
		Students: []student.Student{
			{ID: 1, FullName: "Amine", Gender: student.GenderMale, ClassID: 1, CreatedAt: day(1)},
			{ID: 2, FullName: "Lina", Gender: student.GenderFemale, ClassID: 1, CreatedAt: day(2)},
			{ID: 3, FullName: "Sara", Gender: student.GenderFemale, ClassID: 2, CreatedAt: day(3)},
		},
		Grades: []grade.Grade{
			{ID: 1, StudentID: 1, SubjectID: 1, Score: 8},
			{ID: 2, StudentID: 1, SubjectID: 1, Score: 10},
			{ID: 3, StudentID: 1, SubjectID: 2, Score: 6},
			{ID: 4, StudentID: 2, SubjectID: 1, Score: 7},
		},
		Payments: []payment.Payment{
			{ID: 1, StudentID: 1, Month: 10, Year: 2024, Amount: decimal.NewFromInt(3000), IsPaid: true},
			{ID: 2, StudentID: 2, Month: 10, Year: 2024, Amount: decimal.NewFromInt(3000)},
			{ID: 3, StudentID: 1, Month: 9, Year: 2024, Amount: decimal.NewFromInt(3000), IsPaid: true},
		},
		Transactions: []finance.Transaction{
			{ID: 1, Type: finance.TypeIncome, Amount: decimal.NewFromInt(5000), Date: "2024-10-01"},
			{ID: 2, Type: finance.TypeExpense, Amount: decimal.NewFromInt(1200), Date: "2024-10-31"},
			{ID: 3, Type: finance.TypeIncome, Amount: decimal.NewFromInt(999), Date: "2024-09-30"},
		},
		Notes: map[int]string{1: "Asthmatic"},
	}
}

func newTestService() *Service {
	svc := NewService(datasetRepo(testDataset()))
	svc.now = func() time.Time { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestStudentReport(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rep, err := svc.StudentReport(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, rep.Class)
	assert.Equal(t, "CM1", rep.Class.Name)
	assert.Equal(t, "Asthmatic", rep.Note)
	assert.Equal(t, 3, rep.TotalGrades)
	assert.Equal(t, 8.25, rep.GeneralAverage) // (9*3 + 6*1) / 4
	assert.Equal(t, grade.VeryGood, rep.Appreciation)
	require.Len(t, rep.Subjects, 2)
	assert.Equal(t, 9.0, rep.Subjects[0].Average)
	assert.Equal(t, 2, rep.Subjects[0].GradeCount)
	assert.Equal(t, grade.Excellent, rep.Subjects[0].Appreciation)

	// ungraded students get empty subject reports
	rep, err = svc.StudentReport(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, rep.GeneralAverage)
	assert.Equal(t, []grade.Grade{}, rep.Subjects[1].Grades)
	assert.Empty(t, rep.Subjects[1].Appreciation)

	_, err = svc.StudentReport(ctx, 99)
	assert.Equal(t, student.ErrNotFound, err)
}

func TestClassTable(t *testing.T) {
	svc := newTestService()

	sheet, header, rows, err := svc.ClassTable(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "CM1", sheet)
	assert.Equal(t, []string{"Rank", "Student", "MATH (x3)", "ARAB (x1)", "General average", "Appreciation"}, header)
	assert.Equal(t, [][]interface{}{
		{1, "Amine", 9.0, 6.0, 8.25, grade.VeryGood},
		{2, "Lina", 7.0, 0.0, 7.0, grade.Good},
	}, rows)

	_, _, _, err = svc.ClassTable(context.Background(), 99)
	assert.Equal(t, class.ErrNotFound, err)
}

func TestDashboard(t *testing.T) {
	db, err := newTestService().Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Totals{Students: 3, Classes: 2, Subjects: 2, Grades: 4, AverageGrade: 7.75}, db.Totals)

	names := make([]string, len(db.RecentStudents))
	for i, std := range db.RecentStudents {
		names[i] = std.FullName
	}
	assert.Equal(t, []string{"Sara", "Lina", "Amine"}, names)

	require.Len(t, db.ClassStats, 2)
	assert.Equal(t, 100.0, db.ClassStats[0].Percentage)
	assert.Equal(t, 1, db.ClassStats[0].MaleCount)
	assert.Equal(t, 1, db.ClassStats[0].FemaleCount)
	assert.Equal(t, 10.0, db.ClassStats[1].Percentage)

	// October 2024 only
	assert.Equal(t, 2, db.PaymentStats.Total)
	assert.Equal(t, 1, db.PaymentStats.Paid)
	assert.Equal(t, 50.0, db.PaymentStats.CollectedRate)
	assert.Equal(t, "3000", db.PaymentStats.UnpaidAmount.String())

	assert.Equal(t, 2, db.FinanceStats.Count)
	assert.Equal(t, "5000", db.FinanceStats.TotalIncome.String())
	assert.Equal(t, "1200", db.FinanceStats.TotalExpenses.String())
	assert.Equal(t, "3800", db.FinanceStats.NetProfit.String())
}

func TestRecentStudentsLimit(t *testing.T) {
	ds := testDataset()
	for i := 4; i <= 9; i++ {
		ds.Students = append(ds.Students, student.Student{ID: i, ClassID: 2, CreatedAt: day(i)})
	}
	db := buildDashboard(ds, time.Now())
	require.Len(t, db.RecentStudents, recentStudentsCount)
	assert.Equal(t, 9, db.RecentStudents[0].ID)
}
