package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	srv := miniredis.RunT(t)
	store, err := New(context.Background(), Options{Addr: srv.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_GetSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "video-comments-v1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.Set(ctx, "video-comments-v1", []byte(`[]`)))
	value, err := store.Get(ctx, "video-comments-v1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}

func TestStore_GetMany(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	require.NoError(t, store.Set(ctx, "c", []byte("3")))

	values, err := store.GetMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "c": []byte("3")}, values)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, Options{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
}

func TestStore_PublishSkipsSender(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []storage.Event
		own      int
	)
	require.NoError(t, store.Subscribe(ctx, "video-comments-v1", "tab-b", func(ev storage.Event) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
	}))
	require.NoError(t, store.Subscribe(ctx, "video-comments-v1", "tab-a", func(storage.Event) {
		mu.Lock()
		own++
		mu.Unlock()
	}))

	require.NoError(t, store.Publish(ctx, storage.Event{Key: "video-comments-v1", Origin: "tab-a"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "tab-a", received[0].Origin)
	assert.Equal(t, "video-comments-v1", received[0].Key)
	assert.Equal(t, 0, own)
}

func TestNewWithClient_Defaults(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	store := NewWithClient(client, "", nil)
	assert.Equal(t, DefaultChannelPrefix, store.channelPrefix)
	assert.NotNil(t, store.log)
}
