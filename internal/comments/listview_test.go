package comments

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/apexmed-interactions/internal/auth"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/storage/inmemory"
)

// tab - один контекст выполнения: свое хранилище комментариев поверх общего KV и хаба.
type tab struct {
	store *Store
	view  *ListView
}

func openTab(t *testing.T, ctx context.Context, kv *inmemory.Store, hub *inmemory.Hub, origin, userID string) *tab {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := New(kv, hub, origin, WithLogger(logger))
	view := NewListView(store, "v1", userID)
	require.NoError(t, view.Start(ctx))
	t.Cleanup(view.Close)
	return &tab{store: store, view: view}
}

func TestListView_Start(t *testing.T) {
	store, _ := newTestStore(t)
	view := NewListView(store, "v1", "user-a")
	assert.Equal(t, StateLoading, view.State())
	assert.Equal(t, domain.SortNewest, view.Order())

	require.NoError(t, view.Start(context.Background()))
	defer view.Close()
	assert.Equal(t, StateReady, view.State())
	assert.Empty(t, view.Snapshot())
}

func TestListView_TwoTabs(t *testing.T) {
	ctx := context.Background()
	kv := inmemory.New()
	hub := inmemory.NewHub()

	tabA := openTab(t, ctx, kv, hub, "tab-a", "user-a")
	tabB := openTab(t, ctx, kv, hub, "tab-b", "user-b")

	var notifiedA int
	tabA.view.OnChange(func([]*domain.Comment) { notifiedA++ })

	form := NewForm("v1", tabA.store, auth.Static{User: &testAuthor}, func(*domain.Comment) {
		tabA.view.Refresh(ctx)
	})
	form.SetInput("Ótimo vídeo")
	_, err := form.Submit(ctx)
	require.NoError(t, err)

	// A обновился через onAdded, а не через собственное уведомление
	assert.Equal(t, 1, notifiedA)
	require.Len(t, tabA.view.Snapshot(), 1)

	// B получил уведомление и перечитал коллекцию
	seenByB := tabB.view.Snapshot()
	require.Len(t, seenByB, 1)
	assert.Equal(t, "Ótimo vídeo", seenByB[0].Content)
	assert.Equal(t, 0, seenByB[0].LikeCount)

	liked, err := tabB.view.LikeComment(ctx, seenByB[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, 1, tabB.view.Snapshot()[0].LikeCount)

	// Лайки не рассылаются: A видит старый снимок до явного перечитывания
	assert.Equal(t, 0, tabA.view.Snapshot()[0].LikeCount)
	tabA.view.Refresh(ctx)
	assert.Equal(t, 1, tabA.view.Snapshot()[0].LikeCount)
	assert.True(t, tabA.view.Snapshot()[0].LikedByUser("user-b"))
}

func TestListView_Close(t *testing.T) {
	ctx := context.Background()
	kv := inmemory.New()
	hub := inmemory.NewHub()

	tabA := openTab(t, ctx, kv, hub, "tab-a", "user-a")
	tabB := openTab(t, ctx, kv, hub, "tab-b", "user-b")
	tabB.view.Close()

	require.Eventually(t, func() bool {
		return hub.Subscribers(CollectionKey("v1")) == 1
	}, time.Second, 10*time.Millisecond)

	_, err := tabA.store.Add(ctx, "v1", "depois do fechamento", testAuthor)
	require.NoError(t, err)
	require.NoError(t, tabA.store.NotifyChanged(ctx, "v1"))
	assert.Empty(t, tabB.view.Snapshot())
}

func TestListView_ToggleOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for _, text := range []string{"primeiro", "segundo"} {
		_, err := store.Add(ctx, "v1", text, testAuthor)
		require.NoError(t, err)
	}

	view := NewListView(store, "v1", "user-a")
	view.Refresh(ctx)
	assert.Equal(t, "segundo", view.Snapshot()[0].Content)

	assert.Equal(t, domain.SortOldest, view.ToggleOrder(ctx))
	assert.Equal(t, "primeiro", view.Snapshot()[0].Content)

	assert.Equal(t, domain.SortNewest, view.ToggleOrder(ctx))
	assert.Equal(t, "segundo", view.Snapshot()[0].Content)
}

func TestListView_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.Add(ctx, "v1", "original", testAuthor)
	require.NoError(t, err)

	view := NewListView(store, "v1", "user-a")
	view.Refresh(ctx)
	view.Snapshot()[0].Content = "changed"
	assert.Equal(t, "original", view.Snapshot()[0].Content)
}
