package subject

import (
	"context"
	"errors"
	"time"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("subject")
	ErrCodeExists = errors.New("a subject with this code already exists")
	ErrHasGrades  = errors.New("cannot delete a subject that still has grades")
)

type (
	Repository interface {
		// CreateSubject and UpdateSubject fail with ErrCodeExists if another subject has the same code,
		// ignoring case.
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		// DeleteSubject fails with a core.ConflictError wrapping ErrHasGrades while grades reference the subject.
		DeleteSubject(ctx context.Context, id int) error
		QuerySubjectStats(ctx context.Context) ([]Stats, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func codeError(err error) error {
	if err == ErrCodeExists {
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := svc.now().UTC()
	sub, err := svc.repo.CreateSubject(ctx, Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Coefficient: ns.Coefficient,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return sub, codeError(err)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	sub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	sub = us.apply(sub)
	sub.UpdatedAt = svc.now().UTC()
	sub, err = svc.repo.UpdateSubject(ctx, sub)
	return sub, codeError(err)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *Service) Stats(ctx context.Context) ([]Stats, error) {
	return svc.repo.QuerySubjectStats(ctx)
}

// StatsByID returns the stats of a single subject.
func (svc *Service) StatsByID(ctx context.Context, id int) (Stats, error) {
	stats, err := svc.repo.QuerySubjectStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	for _, s := range stats {
		if s.Subject.ID == id {
			return s, nil
		}
	}
	return Stats{}, ErrNotFound
}
