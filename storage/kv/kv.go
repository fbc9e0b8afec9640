// Package kv defines the key-value store holding every collection of the academy as a JSON document.
package kv

import (
	"context"
	"errors"
)

// Keys
const (
	KeyStudents            = "academy_students"
	KeyClasses             = "academy_classes"
	KeySubjects            = "academy_subjects"
	KeyGrades              = "academy_grades"
	KeyPayments            = "academy_payments"
	KeySettings            = "academy_settings"
	KeyUISettings          = "academy_ui_settings"
	KeyStudentNotes        = "academy_student_notes"
	KeyUsers               = "academy_users"
	KeyFinanceCategories   = "finance_categories"
	KeyFinanceTransactions = "finance_transactions"

	seqSuffix = ":seq"
)

var ErrNotFound = errors.New("key not found")

// DataKeys are the keys holding academy data (accounts excluded).
var DataKeys = []string{
	KeyStudents,
	KeyClasses,
	KeySubjects,
	KeyGrades,
	KeyPayments,
	KeySettings,
	KeyUISettings,
	KeyStudentNotes,
	KeyFinanceCategories,
	KeyFinanceTransactions,
}

// Store is a key-value store.
type Store interface {
	// Get returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// SeqKey returns the key of the identifier sequence of the collection stored under key.
func SeqKey(key string) string {
	return key + seqSuffix
}

// Clear deletes every academy data key along with its identifier sequence.
func Clear(ctx context.Context, store Store) error {
	keys := make([]string, 0, 2*len(DataKeys))
	for _, k := range DataKeys {
		keys = append(keys, k, SeqKey(k))
	}
	return store.Del(ctx, keys...)
}
