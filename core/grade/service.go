package grade

import (
	"context"
	"errors"
	"time"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("grade")
	ErrStudentNotFound = errors.New("student not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type (
	Repository interface {
		// CreateGrades fails with ErrStudentNotFound or ErrSubjectNotFound if a reference does not exist;
		// nothing is created then.
		CreateGrades(ctx context.Context, grades ...Grade) ([]Grade, error)
		QueryAllGrades(ctx context.Context) ([]Grade, error)
		FilterGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		GetGradeByID(ctx context.Context, id int) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func referenceError(err error) error {
	switch err {
	case ErrStudentNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "studentId", Error: err.Error()})
	case ErrSubjectNotFound:
		return core.NewValidationError(err, core.FieldError{Field: "subjectId", Error: err.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	now := svc.now().UTC()
	grades, err := svc.repo.CreateGrades(ctx, Grade{
		StudentID: ng.StudentID,
		SubjectID: ng.SubjectID,
		Score:     *ng.Score,
		ExamType:  ng.ExamType,
		ExamDate:  ng.ExamDate,
		Notes:     ng.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Grade{}, referenceError(err)
	}
	return grades[0], nil
}

// CreateBulk records the grades of one student in several subjects at once.
func (svc *Service) CreateBulk(ctx context.Context, bg BulkGrades) ([]Grade, error) {
	now := svc.now().UTC()
	toCreate := make([]Grade, 0, len(bg.Scores))
	for _, sc := range bg.Scores {
		toCreate = append(toCreate, Grade{
			StudentID: bg.StudentID,
			SubjectID: sc.SubjectID,
			Score:     *sc.Score,
			ExamType:  bg.ExamType,
			ExamDate:  bg.ExamDate,
			Notes:     bg.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	grades, err := svc.repo.CreateGrades(ctx, toCreate...)
	return grades, referenceError(err)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Grade, error) {
	return svc.repo.QueryAllGrades(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Grade, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllGrades(ctx)
	}
	return svc.repo.FilterGrades(ctx, filter)
}

func (svc *Service) GetByStudent(ctx context.Context, studentID int) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) GetBySubject(ctx context.Context, subjectID int) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, QueryFilter{SubjectID: subjectID})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	g, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	g = ug.apply(g)
	g.UpdatedAt = svc.now().UTC()
	g, err = svc.repo.UpdateGrade(ctx, g)
	return g, referenceError(err)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteGrade(ctx, id)
}
