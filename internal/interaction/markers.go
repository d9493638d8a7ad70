package interaction

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// DefaultMarkersKey - ключ сохраняемого набора уже засчитанных просмотров.
const DefaultMarkersKey = "viewed-videos"

// Markers - набор видео, просмотр которых уже засчитан в текущей сессии.
type Markers interface {
	Seen(ctx context.Context, videoID string) bool
	Mark(ctx context.Context, videoID string) error
}

// SessionMarkers живет только в памяти процесса.
type SessionMarkers struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewSessionMarkers() *SessionMarkers {
	return &SessionMarkers{seen: make(map[string]struct{})}
}

func (m *SessionMarkers) Seen(_ context.Context, videoID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[videoID]
	return ok
}

func (m *SessionMarkers) Mark(_ context.Context, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[videoID] = struct{}{}
	return nil
}

// StoredMarkers хранит набор под ключом в Storage и переживает перезапуск процесса.
type StoredMarkers struct {
	storage storage.Storage
	key     string
	log     logrus.FieldLogger
}

func NewStoredMarkers(s storage.Storage, key string, log logrus.FieldLogger) *StoredMarkers {
	if key == "" {
		key = DefaultMarkersKey
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StoredMarkers{storage: s, key: key, log: log}
}

func (m *StoredMarkers) Seen(ctx context.Context, videoID string) bool {
	for _, id := range storage.LoadJSON[[]string](ctx, m.storage, m.key, m.log) {
		if id == videoID {
			return true
		}
	}
	return false
}

func (m *StoredMarkers) Mark(ctx context.Context, videoID string) error {
	ids := addMember(storage.LoadJSON[[]string](ctx, m.storage, m.key, m.log), videoID)
	return storage.SaveJSON(ctx, m.storage, m.key, ids)
}
