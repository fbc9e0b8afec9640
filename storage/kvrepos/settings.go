package kvrepos

import (
	"context"

	"github.com/abdel28fr/ecole-pwa/core/settings"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func (db *DB) settings(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	if _, err := loadDoc(ctx, db, kv.KeySettings, &s); err != nil {
		return settings.Settings{}, err
	}
	return settings.MergeDefaults(s), nil
}

func (db *DB) uiSettings(ctx context.Context) (settings.UISettings, error) {
	s := settings.UISettings{}
	if _, err := loadDoc(ctx, db, kv.KeyUISettings, &s); err != nil {
		return nil, err
	}
	if s == nil {
		s = settings.UISettings{}
	}
	return s, nil
}

type settingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(ctx context.Context) (settings.Settings, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.settings(ctx)
}

func (repo *settingsRepository) SaveSettings(ctx context.Context, s settings.Settings) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return save(ctx, repo.db, kv.KeySettings, s)
}

func (repo *settingsRepository) GetUISettings(ctx context.Context) (settings.UISettings, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.uiSettings(ctx)
}

func (repo *settingsRepository) SaveUISettings(ctx context.Context, s settings.UISettings) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return save(ctx, repo.db, kv.KeyUISettings, s)
}
