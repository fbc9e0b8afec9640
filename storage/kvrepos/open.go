package kvrepos

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
	memkv "github.com/abdel28fr/ecole-pwa/storage/kv/memory"
	pgkv "github.com/abdel28fr/ecole-pwa/storage/kv/postgres"
	rediskv "github.com/abdel28fr/ecole-pwa/storage/kv/redis"
)

var ErrUnknownEngine = errors.New("unknown storage engine")

// OpenStore opens the store selected by conf.Storage.Engine.
// The postgres database is created and migrated if needed.
func OpenStore(conf *core.Config) (kv.Store, error) {
	switch conf.Storage.Engine {
	case core.StorageMemory, "":
		return memkv.New(), nil

	case core.StorageRedis:
		store, err := rediskv.Open(conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening redis store")
		}
		return store, nil

	case core.StoragePostgres:
		if err := pgkv.CreateIfNotExist(conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := pgkv.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = pgkv.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "migrating database")
		}
		return pgkv.New(db), nil
	}
	return nil, errors.Wrap(ErrUnknownEngine, fmt.Sprintf("%q", conf.Storage.Engine))
}
