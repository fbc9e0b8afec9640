package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func classID(c class.Class) int { return c.ID }

func (db *DB) classes(ctx context.Context) ([]class.Class, error) {
	return loadList(ctx, db, kv.KeyClasses, func() []class.Class { return defaultClasses(db.now()) })
}

type classRepository struct {
	db *DB
}

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return class.Class{}, err
	}
	if cls.ID, err = allocIDs(ctx, repo.db, kv.KeyClasses, maxID(classes, classID), 1); err != nil {
		return class.Class{}, err
	}
	classes = append(classes, cls)
	if err = save(ctx, repo.db, kv.KeyClasses, classes); err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.classes(ctx)
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return class.Class{}, err
	}
	if i := indexOf(classes, classID, id); i >= 0 {
		return classes[i], nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return class.Class{}, err
	}
	i := indexOf(classes, classID, cls.ID)
	if i < 0 {
		return class.Class{}, class.ErrNotFound
	}
	classes[i] = cls
	if err = save(ctx, repo.db, kv.KeyClasses, classes); err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return err
	}
	i := indexOf(classes, classID, id)
	if i < 0 {
		return class.ErrNotFound
	}

	students, err := repo.db.students(ctx)
	if err != nil {
		return err
	}
	var linked int
	for _, std := range students {
		if std.ClassID == id {
			linked++
		}
	}
	if linked > 0 {
		return core.NewConflictError(class.ErrHasStudents, linked)
	}

	classes = append(classes[:i], classes[i+1:]...)
	return save(ctx, repo.db, kv.KeyClasses, classes)
}

func (repo *classRepository) QueryClassStats(ctx context.Context) ([]class.Stats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return nil, err
	}
	students, err := repo.db.students(ctx)
	if err != nil {
		return nil, err
	}
	return class.ComputeStats(classes, students), nil
}
