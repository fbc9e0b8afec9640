// Package rediskv is a kv.Store backed by Redis: one string value per key.
package rediskv

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

type Store struct {
	client *redis.Client
}

var _ kv.Store = (*Store)(nil)

// Open connects to Redis and waits for it to answer.
func Open(conf *core.Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return New(client), nil
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// ping waits for redis to be ready. Waits 100ms longer between each attempt.
func ping(client *redis.Client) error {
	var err error
	maxAttempts := 20
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(context.Background()).Err(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "redis ping timeout")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting %q", key)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(s.client.Set(ctx, key, value, 0).Err(), "setting %q", key)
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.client.Del(ctx, keys...).Err(), "deleting keys")
}

func (s *Store) Close() error {
	return s.client.Close()
}
