package kvrepos

import (
	"context"
	"strings"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func subjectID(s subject.Subject) int { return s.ID }

func (db *DB) subjects(ctx context.Context) ([]subject.Subject, error) {
	return loadList(ctx, db, kv.KeySubjects, func() []subject.Subject { return defaultSubjects(db.now()) })
}

func checkSubjectCode(subjects []subject.Subject, sub subject.Subject) error {
	for _, s := range subjects {
		if s.ID != sub.ID && strings.EqualFold(s.Code, sub.Code) {
			return subject.ErrCodeExists
		}
	}
	return nil
}

type subjectRepository struct {
	db *DB
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return subject.Subject{}, err
	}
	if err = checkSubjectCode(subjects, sub); err != nil {
		return subject.Subject{}, err
	}
	if sub.ID, err = allocIDs(ctx, repo.db, kv.KeySubjects, maxID(subjects, subjectID), 1); err != nil {
		return subject.Subject{}, err
	}
	subjects = append(subjects, sub)
	if err = save(ctx, repo.db, kv.KeySubjects, subjects); err != nil {
		return subject.Subject{}, err
	}
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.subjects(ctx)
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return subject.Subject{}, err
	}
	if i := indexOf(subjects, subjectID, id); i >= 0 {
		return subjects[i], nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return subject.Subject{}, err
	}
	i := indexOf(subjects, subjectID, sub.ID)
	if i < 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	if err = checkSubjectCode(subjects, sub); err != nil {
		return subject.Subject{}, err
	}
	subjects[i] = sub
	if err = save(ctx, repo.db, kv.KeySubjects, subjects); err != nil {
		return subject.Subject{}, err
	}
	return sub, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return err
	}
	i := indexOf(subjects, subjectID, id)
	if i < 0 {
		return subject.ErrNotFound
	}

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return err
	}
	var linked int
	for _, g := range grades {
		if g.SubjectID == id {
			linked++
		}
	}
	if linked > 0 {
		return core.NewConflictError(subject.ErrHasGrades, linked)
	}

	subjects = append(subjects[:i], subjects[i+1:]...)
	return save(ctx, repo.db, kv.KeySubjects, subjects)
}

func (repo *subjectRepository) QuerySubjectStats(ctx context.Context) ([]subject.Stats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return nil, err
	}
	grades, err := repo.db.grades(ctx)
	if err != nil {
		return nil, err
	}

	bySubject := grade.BySubject(grades)
	stats := make([]subject.Stats, 0, len(subjects))
	for _, sub := range subjects {
		subGrades := bySubject[sub.ID]
		stats = append(stats, subject.Stats{
			Subject:      sub,
			TotalGrades:  len(subGrades),
			AverageGrade: core.Round2(grade.Mean(subGrades)),
		})
	}
	return stats, nil
}
