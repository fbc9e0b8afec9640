package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func gradeID(g grade.Grade) int { return g.ID }

func (db *DB) grades(ctx context.Context) ([]grade.Grade, error) {
	return loadList[grade.Grade](ctx, db, kv.KeyGrades, nil)
}

// classOf returns a lookup of the class of each student.
func classOf(students []student.Student) func(studentID int) int {
	classes := make(map[int]int, len(students))
	for _, std := range students {
		classes[std.ID] = std.ClassID
	}
	return func(studentID int) int { return classes[studentID] }
}

type gradeRepository struct {
	db *DB
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) checkReferences(ctx context.Context, grades ...grade.Grade) error {
	students, err := repo.db.students(ctx)
	if err != nil {
		return err
	}
	subjects, err := repo.db.subjects(ctx)
	if err != nil {
		return err
	}
	for _, g := range grades {
		if indexOf(students, studentID, g.StudentID) < 0 {
			return grade.ErrStudentNotFound
		}
		if indexOf(subjects, subjectID, g.SubjectID) < 0 {
			return grade.ErrSubjectNotFound
		}
	}
	return nil
}

func (repo *gradeRepository) CreateGrades(ctx context.Context, newGrades ...grade.Grade) ([]grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkReferences(ctx, newGrades...); err != nil {
		return nil, err
	}
	grades, err := repo.db.grades(ctx)
	if err != nil {
		return nil, err
	}
	first, err := allocIDs(ctx, repo.db, kv.KeyGrades, maxID(grades, gradeID), len(newGrades))
	if err != nil {
		return nil, err
	}
	created := make([]grade.Grade, len(newGrades))
	for i, g := range newGrades {
		g.ID = first + i
		created[i] = g
	}
	grades = append(grades, created...)
	if err = save(ctx, repo.db, kv.KeyGrades, grades); err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *gradeRepository) QueryAllGrades(ctx context.Context) ([]grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.grades(ctx)
}

func (repo *gradeRepository) FilterGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return nil, err
	}
	lookup := func(int) int { return 0 }
	if filter.ClassID != 0 {
		students, err := repo.db.students(ctx)
		if err != nil {
			return nil, err
		}
		lookup = classOf(students)
	}

	filtered := make([]grade.Grade, 0, len(grades))
	for _, g := range grades {
		if filter.Match(g, lookup) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return grade.Grade{}, err
	}
	if i := indexOf(grades, gradeID, id); i >= 0 {
		return grades[i], nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return grade.Grade{}, err
	}
	i := indexOf(grades, gradeID, g.ID)
	if i < 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	if err = repo.checkReferences(ctx, g); err != nil {
		return grade.Grade{}, err
	}
	grades[i] = g
	if err = save(ctx, repo.db, kv.KeyGrades, grades); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return err
	}
	i := indexOf(grades, gradeID, id)
	if i < 0 {
		return grade.ErrNotFound
	}
	grades = append(grades[:i], grades[i+1:]...)
	return save(ctx, repo.db, kv.KeyGrades, grades)
}
