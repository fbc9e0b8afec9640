package kvrepos

import (
	"context"
	"strconv"

	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func studentID(s student.Student) int { return s.ID }

func (db *DB) students(ctx context.Context) ([]student.Student, error) {
	return loadList[student.Student](ctx, db, kv.KeyStudents, nil)
}

// notes are stored as a JSON object keyed by student ID.
func (db *DB) notes(ctx context.Context) (map[string]string, error) {
	notes := make(map[string]string)
	if _, err := loadDoc(ctx, db, kv.KeyStudentNotes, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = make(map[string]string)
	}
	return notes, nil
}

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudents(ctx context.Context, newStudents ...student.Student) ([]student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	classes, err := repo.db.classes(ctx)
	if err != nil {
		return nil, err
	}
	for _, std := range newStudents {
		if indexOf(classes, classID, std.ClassID) < 0 {
			return nil, student.ErrClassNotFound
		}
	}

	students, err := repo.db.students(ctx)
	if err != nil {
		return nil, err
	}
	first, err := allocIDs(ctx, repo.db, kv.KeyStudents, maxID(students, studentID), len(newStudents))
	if err != nil {
		return nil, err
	}
	created := make([]student.Student, len(newStudents))
	for i, std := range newStudents {
		std.ID = first + i
		created[i] = std
	}
	students = append(students, created...)
	if err = save(ctx, repo.db, kv.KeyStudents, students); err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.students(ctx)
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]student.Student, 0, len(students))
	for _, std := range students {
		if filter.Match(std) {
			filtered = append(filtered, std)
		}
	}
	return filtered, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return student.Student{}, err
	}
	if i := indexOf(students, studentID, id); i >= 0 {
		return students[i], nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return student.Student{}, err
	}
	i := indexOf(students, studentID, std.ID)
	if i < 0 {
		return student.Student{}, student.ErrNotFound
	}
	if students[i].ClassID != std.ClassID {
		classes, err := repo.db.classes(ctx)
		if err != nil {
			return student.Student{}, err
		}
		if indexOf(classes, classID, std.ClassID) < 0 {
			return student.Student{}, student.ErrClassNotFound
		}
	}

	students[i] = std
	if err = save(ctx, repo.db, kv.KeyStudents, students); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return err
	}
	i := indexOf(students, studentID, id)
	if i < 0 {
		return student.ErrNotFound
	}

	grades, err := repo.db.grades(ctx)
	if err != nil {
		return err
	}
	payments, err := repo.db.payments(ctx)
	if err != nil {
		return err
	}
	notes, err := repo.db.notes(ctx)
	if err != nil {
		return err
	}

	students = append(students[:i], students[i+1:]...)
	if err = save(ctx, repo.db, kv.KeyStudents, students); err != nil {
		return err
	}

	keptGrades := grades[:0]
	for _, g := range grades {
		if g.StudentID != id {
			keptGrades = append(keptGrades, g)
		}
	}
	if len(keptGrades) != len(grades) {
		if err = save(ctx, repo.db, kv.KeyGrades, keptGrades); err != nil {
			return err
		}
	}

	keptPayments := payments[:0]
	for _, p := range payments {
		if p.StudentID != id {
			keptPayments = append(keptPayments, p)
		}
	}
	if len(keptPayments) != len(payments) {
		if err = save(ctx, repo.db, kv.KeyPayments, keptPayments); err != nil {
			return err
		}
	}

	key := strconv.Itoa(id)
	if _, ok := notes[key]; ok {
		delete(notes, key)
		return save(ctx, repo.db, kv.KeyStudentNotes, notes)
	}
	return nil
}

func (repo *studentRepository) GetStudentNote(ctx context.Context, id int) (string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return "", err
	}
	if indexOf(students, studentID, id) < 0 {
		return "", student.ErrNotFound
	}
	notes, err := repo.db.notes(ctx)
	if err != nil {
		return "", err
	}
	return notes[strconv.Itoa(id)], nil
}

// SetStudentNote stores the note of a student; an empty note removes it.
func (repo *studentRepository) SetStudentNote(ctx context.Context, id int, note string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	students, err := repo.db.students(ctx)
	if err != nil {
		return err
	}
	if indexOf(students, studentID, id) < 0 {
		return student.ErrNotFound
	}
	notes, err := repo.db.notes(ctx)
	if err != nil {
		return err
	}
	if note == "" {
		delete(notes, strconv.Itoa(id))
	} else {
		notes[strconv.Itoa(id)] = note
	}
	return save(ctx, repo.db, kv.KeyStudentNotes, notes)
}
