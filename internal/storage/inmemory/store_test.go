package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

func TestStore_GetMissingKey(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "video-comments-v1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestStore_SetAndGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "videos-stats", []byte(`{"v1":{"views":1}}`)))

	value, err := store.Get(ctx, "videos-stats")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v1":{"views":1}}`, string(value))

	// Перезапись: побеждает последний писатель
	require.NoError(t, store.Set(ctx, "videos-stats", []byte(`{}`)))
	value, err = store.Get(ctx, "videos-stats")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(value))
}

func TestStore_ValuesAreCopied(t *testing.T) {
	store := New()
	ctx := context.Background()

	input := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", input))
	input[0] = 'x'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(value))

	value[1] = 'y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStore_GetMany(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Set(ctx, "b", []byte("2")))

	values, err := store.GetMany(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, "1", string(values["a"]))
	assert.Equal(t, "2", string(values["b"]))
	_, ok := values["missing"]
	assert.False(t, ok)
}

func TestHub_SkipsSenderOrigin(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tabA, tabB []storage.Event
	require.NoError(t, hub.Subscribe(ctx, "video-comments-v1", "tab-a", func(ev storage.Event) { tabA = append(tabA, ev) }))
	require.NoError(t, hub.Subscribe(ctx, "video-comments-v1", "tab-b", func(ev storage.Event) { tabB = append(tabB, ev) }))

	require.NoError(t, hub.Publish(ctx, storage.Event{Key: "video-comments-v1", Origin: "tab-a"}))

	assert.Empty(t, tabA, "отправитель не должен получать собственное уведомление")
	require.Len(t, tabB, 1)
	assert.Equal(t, "tab-a", tabB[0].Origin)
}

func TestHub_ScopedToKey(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	require.NoError(t, hub.Subscribe(ctx, "video-comments-v1", "tab-b", func(storage.Event) { calls++ }))

	require.NoError(t, hub.Publish(ctx, storage.Event{Key: "video-comments-v2", Origin: "tab-a"}))
	assert.Equal(t, 0, calls)
}

func TestHub_UnsubscribeOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, hub.Subscribe(ctx, "k", "tab-b", func(storage.Event) {}))
	assert.Equal(t, 1, hub.Subscribers("k"))

	cancel()
	assert.Eventually(t, func() bool { return hub.Subscribers("k") == 0 }, time.Second, 5*time.Millisecond)
}
