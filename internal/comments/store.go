package comments

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserRequired    = errors.New("user id is required to like a comment")
)

// CollectionKey - ключ коллекции комментариев видео. По нему же идут уведомления.
func CollectionKey(videoID string) string {
	return "video-comments-" + videoID
}

// Store хранит комментарии видео одной коллекцией под одним ключом.
// Каждая запись перезаписывает коллекцию целиком: без Locker при одновременной записи из двух контекстов побеждает последний.
type Store struct {
	storage     storage.Storage
	broadcaster storage.Broadcaster
	origin      string
	locker      storage.Locker
	now         func() time.Time
	log         logrus.FieldLogger
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocker включает блокировку коллекции на время чтения-изменения-записи.
// Без нее одновременные записи из разных контекстов разрешаются по правилу "последний побеждает".
func WithLocker(l storage.Locker) Option {
	return func(s *Store) { s.locker = l }
}

// WithLogger задает логгер.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New создает хранилище комментариев для контекста выполнения origin.
// broadcaster может быть nil - тогда уведомления не отправляются.
func New(s storage.Storage, b storage.Broadcaster, origin string, opts ...Option) *Store {
	store := &Store{
		storage:     s,
		broadcaster: b,
		origin:      origin,
		now:         time.Now,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(store)
	}
	store.log = store.log.WithField("component", "comments")
	return store
}

// Origin возвращает идентификатор контекста выполнения хранилища.
func (s *Store) Origin() string { return s.origin }

// Add проверяет текст, создает комментарий и добавляет его в начало коллекции.
// При ошибке валидации ничего не сохраняется.
func (s *Store) Add(ctx context.Context, videoID, content string, author domain.Author) (*domain.Comment, error) {
	trimmed, err := Validate(content)
	if err != nil {
		return nil, err
	}

	var comment *domain.Comment
	err = storage.WithLock(ctx, s.locker, CollectionKey(videoID), func() error {
		existing := s.load(ctx, videoID)
		comment = &domain.Comment{
			ID:        s.newID(existing),
			Content:   trimmed,
			CreatedAt: s.now().UTC(),
			Author:    author,
			LikeCount: 0,
			LikedBy:   []string{},
		}
		updated := append([]*domain.Comment{comment}, existing...)
		return storage.SaveJSON(ctx, s.storage, CollectionKey(videoID), updated)
	})
	if err != nil {
		return nil, err
	}
	return comment.Clone(), nil
}

// List возвращает все комментарии видео в заданном порядке.
// При равном времени создания порядок определяется порядком добавления:
// раньше добавленный идет первым для SortOldest, для SortNewest - наоборот.
func (s *Store) List(ctx context.Context, videoID string, order domain.SortOrder) []*domain.Comment {
	stored := s.load(ctx, videoID)

	// Коллекция хранится от новых к старым, поэтому порядковый номер добавления - обратный индекс
	type indexed struct {
		comment *domain.Comment
		seq     int
	}
	items := make([]indexed, len(stored))
	for i, c := range stored {
		items[i] = indexed{comment: c, seq: len(stored) - 1 - i}
	}

	oldest := order == domain.SortOldest
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.comment.CreatedAt.Equal(b.comment.CreatedAt) {
			if oldest {
				return a.comment.CreatedAt.Before(b.comment.CreatedAt)
			}
			return a.comment.CreatedAt.After(b.comment.CreatedAt)
		}
		if oldest {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})

	result := make([]*domain.Comment, len(items))
	for i, it := range items {
		result[i] = it.comment
	}
	return result
}

// Count возвращает число комментариев видео.
func (s *Store) Count(ctx context.Context, videoID string) int {
	return len(s.load(ctx, videoID))
}

// CountMany считает комментарии для нескольких видео одним запросом к хранилищу.
func (s *Store) CountMany(ctx context.Context, videoIDs []string) (map[string]int, error) {
	keys := make([]string, len(videoIDs))
	for i, id := range videoIDs {
		keys[i] = CollectionKey(id)
	}

	raw, err := s.storage.GetMany(ctx, keys)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load comment collections")
	}

	counts := make(map[string]int, len(videoIDs))
	for i, id := range videoIDs {
		counts[id] = len(s.decode(keys[i], raw[keys[i]]))
	}
	return counts, nil
}

// ToggleLike ставит или снимает лайк пользователя и сохраняет коллекцию.
func (s *Store) ToggleLike(ctx context.Context, videoID, commentID, userID string) (*domain.Comment, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	var result *domain.Comment
	err := storage.WithLock(ctx, s.locker, CollectionKey(videoID), func() error {
		comments := s.load(ctx, videoID)
		var target *domain.Comment
		for _, c := range comments {
			if c.ID == commentID {
				target = c
				break
			}
		}
		if target == nil {
			return errors.Wrapf(ErrCommentNotFound, "comment %s of video %s", commentID, videoID)
		}

		if target.LikedByUser(userID) {
			likedBy := make([]string, 0, len(target.LikedBy))
			for _, id := range target.LikedBy {
				if id != userID {
					likedBy = append(likedBy, id)
				}
			}
			target.LikedBy = likedBy
		} else {
			target.LikedBy = append(target.LikedBy, userID)
		}
		target.LikeCount = len(target.LikedBy)

		if err := storage.SaveJSON(ctx, s.storage, CollectionKey(videoID), comments); err != nil {
			return err
		}
		result = target.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NotifyChanged сообщает другим контекстам выполнения, что коллекция видео изменилась.
// Собственным подписчикам этого контекста уведомление не доставляется: им нужно перечитать данные самим.
func (s *Store) NotifyChanged(ctx context.Context, videoID string) error {
	if s.broadcaster == nil {
		return nil
	}
	return s.broadcaster.Publish(ctx, storage.Event{Key: CollectionKey(videoID), Origin: s.origin})
}

func (s *Store) load(ctx context.Context, videoID string) []*domain.Comment {
	return normalize(storage.LoadJSON[[]*domain.Comment](ctx, s.storage, CollectionKey(videoID), s.log))
}

func (s *Store) decode(key string, raw []byte) []*domain.Comment {
	if raw == nil {
		return nil
	}
	var comments []*domain.Comment
	if err := json.Unmarshal(raw, &comments); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("malformed record, using empty value")
		return nil
	}
	return normalize(comments)
}

// normalize убирает пустые записи и дубли в likedBy, пересчитывает likeCount.
func normalize(comments []*domain.Comment) []*domain.Comment {
	result := make([]*domain.Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		seen := make(map[string]struct{}, len(c.LikedBy))
		likedBy := make([]string, 0, len(c.LikedBy))
		for _, id := range c.LikedBy {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			likedBy = append(likedBy, id)
		}
		c.LikedBy = likedBy
		c.LikeCount = len(likedBy)
		result = append(result, c)
	}
	return result
}

func (s *Store) newID(existing []*domain.Comment) string {
	for {
		id := uuid.NewString()
		unique := true
		for _, c := range existing {
			if c.ID == id {
				unique = false
				break
			}
		}
		if unique {
			return id
		}
	}
}
