package kvrepos

import (
	"context"
	"strconv"

	"github.com/abdel28fr/ecole-pwa/core/backup"
	"github.com/abdel28fr/ecole-pwa/core/report"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

// snapshot loads every academy collection. The caller holds the lock.
func (db *DB) snapshot(ctx context.Context) (backup.Data, error) {
	var (
		data backup.Data
		err  error
	)
	if data.Students, err = db.students(ctx); err != nil {
		return data, err
	}
	if data.Classes, err = db.classes(ctx); err != nil {
		return data, err
	}
	if data.Subjects, err = db.subjects(ctx); err != nil {
		return data, err
	}
	if data.Grades, err = db.grades(ctx); err != nil {
		return data, err
	}
	if data.Payments, err = db.payments(ctx); err != nil {
		return data, err
	}
	if data.FinanceCategories, err = db.categories(ctx); err != nil {
		return data, err
	}
	if data.FinanceTransactions, err = db.transactions(ctx); err != nil {
		return data, err
	}
	s, err := db.settings(ctx)
	if err != nil {
		return data, err
	}
	data.Settings = &s
	if data.UISettings, err = db.uiSettings(ctx); err != nil {
		return data, err
	}

	notes, err := db.notes(ctx)
	if err != nil {
		return data, err
	}
	data.StudentNotes = make(map[int]string, len(notes))
	for k, note := range notes {
		if id, err := strconv.Atoi(k); err == nil {
			data.StudentNotes[id] = note
		}
	}
	return data, nil
}

type datasetRepository struct {
	db *DB
}

func NewReportRepository(db *DB) report.Repository {
	return &datasetRepository{db: db}
}

func NewBackupRepository(db *DB) backup.Repository {
	return &datasetRepository{db: db}
}

func (repo *datasetRepository) LoadDataset(ctx context.Context) (report.Dataset, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	data, err := repo.db.snapshot(ctx)
	if err != nil {
		return report.Dataset{}, err
	}
	return report.Dataset{
		Students:     data.Students,
		Classes:      data.Classes,
		Subjects:     data.Subjects,
		Grades:       data.Grades,
		Payments:     data.Payments,
		Transactions: data.FinanceTransactions,
		Notes:        data.StudentNotes,
	}, nil
}

func (repo *datasetRepository) Snapshot(ctx context.Context) (backup.Data, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.snapshot(ctx)
}

// Restore replaces the collections present in data. Identifier sequences are moved past the restored IDs
// so that new records never reuse them.
func (repo *datasetRepository) Restore(ctx context.Context, data backup.Data) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	type collection struct {
		key   string
		value interface{}
		maxID int
	}
	var collections []collection
	if data.Students != nil {
		collections = append(collections, collection{kv.KeyStudents, data.Students, maxID(data.Students, studentID)})
	}
	if data.Classes != nil {
		collections = append(collections, collection{kv.KeyClasses, data.Classes, maxID(data.Classes, classID)})
	}
	if data.Subjects != nil {
		collections = append(collections, collection{kv.KeySubjects, data.Subjects, maxID(data.Subjects, subjectID)})
	}
	if data.Grades != nil {
		collections = append(collections, collection{kv.KeyGrades, data.Grades, maxID(data.Grades, gradeID)})
	}
	if data.Payments != nil {
		collections = append(collections, collection{kv.KeyPayments, data.Payments, maxID(data.Payments, paymentID)})
	}
	if data.FinanceCategories != nil {
		collections = append(collections, collection{
			kv.KeyFinanceCategories, data.FinanceCategories, maxID(data.FinanceCategories, categoryID),
		})
	}
	if data.FinanceTransactions != nil {
		collections = append(collections, collection{
			kv.KeyFinanceTransactions, data.FinanceTransactions, maxID(data.FinanceTransactions, transactionID),
		})
	}
	if data.Settings != nil {
		collections = append(collections, collection{key: kv.KeySettings, value: data.Settings})
	}
	if data.UISettings != nil {
		collections = append(collections, collection{key: kv.KeyUISettings, value: data.UISettings})
	}
	if data.StudentNotes != nil {
		collections = append(collections, collection{key: kv.KeyStudentNotes, value: data.StudentNotes})
	}

	for _, c := range collections {
		if err := save(ctx, repo.db, c.key, c.value); err != nil {
			return err
		}
		if c.maxID > 0 {
			if err := bumpSeq(ctx, repo.db, c.key, c.maxID); err != nil {
				return err
			}
		}
	}
	return nil
}
