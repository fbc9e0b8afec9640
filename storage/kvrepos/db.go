// Package kvrepos implements the domain repositories over a kv.Store.
// Every collection is a JSON array (or document) stored under a fixed key;
// repository methods load it, work on it in memory and write it back.
package kvrepos

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

// DB serializes access to the store so that a load-mutate-save sequence,
// including checks across collections, is atomic within the process.
type DB struct {
	store kv.Store
	mu    sync.RWMutex
	now   func() time.Time
}

func NewDB(store kv.Store) *DB {
	return &DB{store: store, now: time.Now}
}

func (db *DB) Store() kv.Store {
	return db.store
}

// loadList returns the array stored under key, the result of def (if not nil) when the key is absent,
// or an empty array.
func loadList[T any](ctx context.Context, db *DB, key string, def func() []T) ([]T, error) {
	raw, err := db.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		if def != nil {
			return def(), nil
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", key)
	}

	var items []T
	if err = json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", key)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// loadDoc decodes the document stored under key into dst. It reports false if the key is absent.
func loadDoc(ctx context.Context, db *DB, key string, dst interface{}) (bool, error) {
	raw, err := db.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "loading %s", key)
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func save(ctx context.Context, db *DB, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return errors.Wrapf(db.store.Set(ctx, key, raw), "saving %s", key)
}

func exists(ctx context.Context, db *DB, key string) (bool, error) {
	_, err := db.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	return err == nil, errors.Wrapf(err, "loading %s", key)
}

func maxID[T any](items []T, id func(T) int) int {
	var max int
	for _, item := range items {
		if n := id(item); n > max {
			max = n
		}
	}
	return max
}

func loadSeq(ctx context.Context, db *DB, key string) (int, error) {
	raw, err := db.store.Get(ctx, kv.SeqKey(key))
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "loading %s sequence", key)
	}
	seq, err := strconv.Atoi(string(raw))
	return seq, errors.Wrapf(err, "decoding %s sequence", key)
}

func saveSeq(ctx context.Context, db *DB, key string, seq int) error {
	return errors.Wrapf(
		db.store.Set(ctx, kv.SeqKey(key), []byte(strconv.Itoa(seq))),
		"saving %s sequence", key,
	)
}

// allocIDs reserves n identifiers for the collection stored under key and returns the first one.
// Identifiers are never reused: they start after both the sequence and the greatest existing ID.
func allocIDs(ctx context.Context, db *DB, key string, currentMax, n int) (int, error) {
	seq, err := loadSeq(ctx, db, key)
	if err != nil {
		return 0, err
	}
	if currentMax > seq {
		seq = currentMax
	}
	if err = saveSeq(ctx, db, key, seq+n); err != nil {
		return 0, err
	}
	return seq + 1, nil
}

// bumpSeq moves the sequence of a collection past currentMax, keeping identifiers monotonic after a restore.
func bumpSeq(ctx context.Context, db *DB, key string, currentMax int) error {
	seq, err := loadSeq(ctx, db, key)
	if err != nil {
		return err
	}
	if currentMax <= seq {
		return nil
	}
	return saveSeq(ctx, db, key, currentMax)
}

func indexOf[T any](items []T, id func(T) int, want int) int {
	for i, item := range items {
		if id(item) == want {
			return i
		}
	}
	return -1
}
