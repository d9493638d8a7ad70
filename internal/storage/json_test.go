package storage_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
	"github.com/UkralStul/apexmed-interactions/internal/storage/inmemory"
)

func TestLoadJSON_MissingKeyIsSilent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	kv := inmemory.New()

	v := storage.LoadJSON[[]string](context.Background(), kv, "missing", logger)
	assert.Nil(t, v)
	assert.Empty(t, hook.AllEntries())
}

func TestLoadJSON_MalformedIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	kv := inmemory.New()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "videos-stats", []byte("{")))

	v := storage.LoadJSON[map[string]int](ctx, kv, "videos-stats", logger)
	assert.Nil(t, v)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "videos-stats", hook.LastEntry().Data["key"])
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	kv := inmemory.New()
	ctx := context.Background()

	require.NoError(t, storage.SaveJSON(ctx, kv, "k", []string{"v1", "v2"}))
	assert.Equal(t, []string{"v1", "v2"}, storage.LoadJSON[[]string](ctx, kv, "k", logrus.StandardLogger()))
}

func TestDeliverable(t *testing.T) {
	ev := storage.Event{Key: "video-comments-v1", Origin: "tab-a"}

	assert.True(t, storage.Deliverable(ev, "video-comments-v1", "tab-b"))
	assert.False(t, storage.Deliverable(ev, "video-comments-v1", "tab-a"))
	assert.False(t, storage.Deliverable(ev, "video-comments-v2", "tab-b"))
	assert.NotEqual(t, storage.NewOrigin(), storage.NewOrigin())
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock unavailable")
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()

	called := false
	require.NoError(t, storage.WithLock(ctx, nil, "k", func() error { called = true; return nil }))
	assert.True(t, called)

	called = false
	err := storage.WithLock(ctx, failingLocker{}, "k", func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to lock k")
}
