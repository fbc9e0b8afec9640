package kvrepos

import (
	"context"
	"time"

	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/core/subject"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func defaultClasses(now time.Time) []class.Class {
	now = now.UTC()
	classes := []class.Class{
		{ID: 1, Name: "Small preschool (3-4 years)", Level: "Preschool", Capacity: 20},
		{ID: 2, Name: "Big preschool (4-5 years)", Level: "Preschool", Capacity: 20},
		{ID: 3, Name: "First year primary", Level: "Primary", Capacity: 25},
		{ID: 4, Name: "Second year primary", Level: "Primary", Capacity: 25},
		{ID: 5, Name: "Third year primary", Level: "Primary", Capacity: 25},
	}
	for i := range classes {
		classes[i].CreatedAt = now
		classes[i].UpdatedAt = now
	}
	return classes
}

func defaultSubjects(now time.Time) []subject.Subject {
	now = now.UTC()
	subjects := []subject.Subject{
		{ID: 1, Name: "Motor activities", Code: "MOTOR", Coefficient: 2},
		{ID: 2, Name: "Oral expression", Code: "ORAL", Coefficient: 3},
		{ID: 3, Name: "Art activities", Code: "ART", Coefficient: 2},
		{ID: 4, Name: "Educational games", Code: "GAMES", Coefficient: 2},
		{ID: 5, Name: "Basic mathematics", Code: "MATH", Coefficient: 3},
		{ID: 6, Name: "Arabic", Code: "AR", Coefficient: 3},
		{ID: 7, Name: "French", Code: "FR", Coefficient: 2},
		{ID: 8, Name: "Science", Code: "SCI", Coefficient: 2},
		{ID: 9, Name: "Islamic education", Code: "REL", Coefficient: 1},
		{ID: 10, Name: "Civic education", Code: "CIV", Coefficient: 1},
	}
	for i := range subjects {
		subjects[i].CreatedAt = now
		subjects[i].UpdatedAt = now
	}
	return subjects
}

// Seed writes the default classes, subjects, settings and finance categories when their keys are absent.
// It returns the seeded keys.
func Seed(ctx context.Context, db *DB) ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	defaults := []struct {
		key   string
		value interface{}
	}{
		{kv.KeyClasses, defaultClasses(now)},
		{kv.KeySubjects, defaultSubjects(now)},
		{kv.KeySettings, settings.Defaults()},
		{kv.KeyFinanceCategories, finance.DefaultCategories(now)},
	}

	seeded := make([]string, 0, len(defaults))
	for _, d := range defaults {
		ok, err := exists(ctx, db, d.key)
		if err != nil {
			return seeded, err
		}
		if ok {
			continue
		}
		if err = save(ctx, db, d.key, d.value); err != nil {
			return seeded, err
		}
		seeded = append(seeded, d.key)
	}
	return seeded, nil
}
