package class

import (
	"context"
	"errors"
	"time"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("class")
	ErrHasStudents = errors.New("cannot delete a class that still has students")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		// DeleteClass fails with a core.ConflictError wrapping ErrHasStudents while students reference the class.
		DeleteClass(ctx context.Context, id int) error
		QueryClassStats(ctx context.Context) ([]Stats, error)
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := svc.now().UTC()
	return svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		Level:     nc.Level,
		Capacity:  nc.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	cls = uc.apply(cls)
	cls.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *Service) Stats(ctx context.Context) ([]Stats, error) {
	return svc.repo.QueryClassStats(ctx)
}

// StatsByID returns the stats of a single class.
func (svc *Service) StatsByID(ctx context.Context, id int) (Stats, error) {
	stats, err := svc.repo.QueryClassStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	for _, s := range stats {
		if s.Class.ID == id {
			return s, nil
		}
	}
	return Stats{}, ErrNotFound
}
