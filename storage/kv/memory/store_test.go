package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, kv.KeyStudents)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	value := []byte(`[{"id":1}]`)
	require.NoError(t, s.Set(ctx, kv.KeyStudents, value))
	value[0] = 'x' // the store keeps its own copy

	got, err := s.Get(ctx, kv.KeyStudents)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	require.NoError(t, s.Del(ctx, kv.KeyStudents, "missing"))
	_, err = s.Get(ctx, kv.KeyStudents)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, key := range []string{kv.KeyStudents, kv.SeqKey(kv.KeyStudents), kv.KeySettings, kv.KeyUsers, kv.SeqKey(kv.KeyUsers)} {
		require.NoError(t, s.Set(ctx, key, []byte(`1`)))
	}

	require.NoError(t, kv.Clear(ctx, s))

	for _, key := range []string{kv.KeyStudents, kv.SeqKey(kv.KeyStudents), kv.KeySettings} {
		_, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, kv.ErrNotFound, key)
	}
	// staff accounts are not academy data
	for _, key := range []string{kv.KeyUsers, kv.SeqKey(kv.KeyUsers)} {
		_, err := s.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}
