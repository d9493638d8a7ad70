package comments

import (
	"context"
	"sync"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// State - состояние списка комментариев.
type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// ListView держит снимок комментариев видео и перечитывает его по уведомлениям из других контекстов.
// Ошибки чтения не выводят его из состояния ready: список просто становится пустым.
type ListView struct {
	store   *Store
	videoID string
	userID  string

	mu       sync.RWMutex
	state    State
	order    domain.SortOrder
	comments []*domain.Comment
	onChange func([]*domain.Comment)
	cancel   context.CancelFunc
}

// NewListView создает список для видео; userID используется для лайков.
func NewListView(store *Store, videoID, userID string) *ListView {
	return &ListView{
		store:   store,
		videoID: videoID,
		userID:  userID,
		state:   StateLoading,
		order:   domain.SortNewest,
	}
}

// OnChange регистрирует колбэк, вызываемый после каждого перечитывания.
func (v *ListView) OnChange(fn func([]*domain.Comment)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Start выполняет первое чтение и подписывается на изменения коллекции.
// Подписка живет до Close или до отмены ctx.
func (v *ListView) Start(ctx context.Context) error {
	v.Refresh(ctx)

	if v.store.broadcaster == nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	err := v.store.broadcaster.Subscribe(subCtx, CollectionKey(v.videoID), v.store.origin, func(storage.Event) {
		v.Refresh(subCtx)
	})
	if err != nil {
		cancel()
		return err
	}

	v.mu.Lock()
	v.cancel = cancel
	v.mu.Unlock()
	return nil
}

// Close отписывает список от уведомлений.
func (v *ListView) Close() {
	v.mu.Lock()
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Refresh перечитывает всю коллекцию.
func (v *ListView) Refresh(ctx context.Context) {
	v.mu.RLock()
	order := v.order
	v.mu.RUnlock()

	comments := v.store.List(ctx, v.videoID, order)

	v.mu.Lock()
	v.comments = comments
	v.state = StateReady
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(v.Snapshot())
	}
}

// SetOrder меняет порядок и перечитывает коллекцию.
func (v *ListView) SetOrder(ctx context.Context, order domain.SortOrder) {
	v.mu.Lock()
	v.order = order
	v.mu.Unlock()
	v.Refresh(ctx)
}

// ToggleOrder переключает "новые сначала" / "старые сначала".
func (v *ListView) ToggleOrder(ctx context.Context) domain.SortOrder {
	v.mu.RLock()
	next := v.order.Toggle()
	v.mu.RUnlock()
	v.SetOrder(ctx, next)
	return next
}

// LikeComment переключает лайк пользователя списка и обновляет снимок.
// Другим контекстам уведомление не отправляется: они увидят лайк при следующем чтении.
func (v *ListView) LikeComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comment, err := v.store.ToggleLike(ctx, v.videoID, commentID, v.userID)
	if err != nil {
		return nil, err
	}
	v.Refresh(ctx)
	return comment, nil
}

// Snapshot возвращает копию текущего списка.
func (v *ListView) Snapshot() []*domain.Comment {
	v.mu.RLock()
	defer v.mu.RUnlock()

	result := make([]*domain.Comment, len(v.comments))
	for i, c := range v.comments {
		result[i] = c.Clone()
	}
	return result
}

func (v *ListView) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *ListView) Order() domain.SortOrder {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.order
}
