package interaction

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// StatsKey - запись со счетчиками всех видео: map[videoID]VideoStats.
const StatsKey = "videos-stats"

// ErrUnknownFlag возвращается для неизвестного вида отметки.
var ErrUnknownFlag = errors.New("unknown interaction flag")

func flagKey(videoID, userID string, kind domain.FlagKind) string {
	return fmt.Sprintf("video-%s-%s-%s", videoID, kind, userID)
}

func membersKey(userID string, kind domain.FlagKind) string {
	return fmt.Sprintf("apexmed-%s-videos-%s", kind, userID)
}

// Store хранит отметки пользователя на видео (лайк, избранное, сохранено) и счетчики видео.
// Изменения не рассылаются другим контекстам выполнения.
type Store struct {
	storage storage.Storage
	locker  storage.Locker
	log     logrus.FieldLogger
}

// Option настраивает Store.
type Option func(*Store)

// WithLocker включает блокировку записей счетчиков и списков на время чтения-изменения-записи.
func WithLocker(l storage.Locker) Option {
	return func(s *Store) { s.locker = l }
}

// New создает хранилище взаимодействий.
func New(s storage.Storage, log logrus.FieldLogger, opts ...Option) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	store := &Store{storage: s, log: log.WithField("component", "interaction")}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// === Flags ===

// Flag читает отметку. Отсутствующая запись означает false.
func (s *Store) Flag(ctx context.Context, videoID, userID string, kind domain.FlagKind) (bool, error) {
	if !kind.Valid() {
		return false, errors.Wrap(ErrUnknownFlag, string(kind))
	}
	return storage.LoadJSON[bool](ctx, s.storage, flagKey(videoID, userID, kind), s.log), nil
}

// SetFlag записывает отметку и синхронизирует список видео пользователя для этого вида.
// Для лайка смена значения двигает счетчик лайков видео на ±1; повторная запись того же значения счетчик не трогает.
func (s *Store) SetFlag(ctx context.Context, videoID, userID string, kind domain.FlagKind, value bool) error {
	prev, err := s.Flag(ctx, videoID, userID, kind)
	if err != nil {
		return err
	}

	if err := storage.SaveJSON(ctx, s.storage, flagKey(videoID, userID, kind), value); err != nil {
		return err
	}

	key := membersKey(userID, kind)
	err = storage.WithLock(ctx, s.locker, key, func() error {
		members := storage.LoadJSON[[]string](ctx, s.storage, key, s.log)
		if value {
			members = addMember(members, videoID)
		} else {
			members = removeMember(members, videoID)
		}
		return storage.SaveJSON(ctx, s.storage, key, members)
	})
	if err != nil {
		return err
	}

	if kind == domain.FlagLiked && prev != value {
		delta := int64(1)
		if !value {
			delta = -1
		}
		if _, err := s.AdjustLikeCounter(ctx, videoID, delta); err != nil {
			return err
		}
	}
	return nil
}

// Toggle переключает отметку и возвращает новое значение.
func (s *Store) Toggle(ctx context.Context, videoID, userID string, kind domain.FlagKind) (bool, error) {
	current, err := s.Flag(ctx, videoID, userID, kind)
	if err != nil {
		return false, err
	}
	if err := s.SetFlag(ctx, videoID, userID, kind, !current); err != nil {
		return current, err
	}
	return !current, nil
}

// Members возвращает видео, отмеченные пользователем, в порядке первой отметки.
func (s *Store) Members(ctx context.Context, userID string, kind domain.FlagKind) ([]string, error) {
	if !kind.Valid() {
		return nil, errors.Wrap(ErrUnknownFlag, string(kind))
	}
	members := storage.LoadJSON[[]string](ctx, s.storage, membersKey(userID, kind), s.log)
	if members == nil {
		members = []string{}
	}
	return members, nil
}

func addMember(members []string, videoID string) []string {
	for _, id := range members {
		if id == videoID {
			return members
		}
	}
	return append(members, videoID)
}

func removeMember(members []string, videoID string) []string {
	result := make([]string, 0, len(members))
	for _, id := range members {
		if id != videoID {
			result = append(result, id)
		}
	}
	return result
}

// === Counters ===

// Stats возвращает счетчики видео. Для неизвестного видео - нули.
func (s *Store) Stats(ctx context.Context, videoID string) domain.VideoStats {
	return s.loadStats(ctx)[videoID]
}

// IncrementViewOnce увеличивает счетчик просмотров один раз на набор меток.
// Повторные вызовы с тем же набором только читают текущее значение.
func (s *Store) IncrementViewOnce(ctx context.Context, videoID string, markers Markers) (int64, error) {
	if markers.Seen(ctx, videoID) {
		return s.Stats(ctx, videoID).Views, nil
	}

	stats, err := s.updateStats(ctx, videoID, func(st *domain.VideoStats) { st.Views++ })
	if err != nil {
		return 0, err
	}

	if err := markers.Mark(ctx, videoID); err != nil {
		return stats.Views, errors.Wrapf(err, "failed to mark video %s as viewed", videoID)
	}
	return stats.Views, nil
}

// AdjustLikeCounter применяет delta к счетчику лайков; значение не опускается ниже нуля.
func (s *Store) AdjustLikeCounter(ctx context.Context, videoID string, delta int64) (int64, error) {
	stats, err := s.updateStats(ctx, videoID, func(st *domain.VideoStats) {
		st.Likes += delta
		if st.Likes < 0 {
			st.Likes = 0
		}
	})
	if err != nil {
		return 0, err
	}
	return stats.Likes, nil
}

// updateStats применяет fn к счетчикам видео и сохраняет общую запись.
func (s *Store) updateStats(ctx context.Context, videoID string, fn func(*domain.VideoStats)) (domain.VideoStats, error) {
	var stats domain.VideoStats
	err := storage.WithLock(ctx, s.locker, StatsKey, func() error {
		all := s.loadStats(ctx)
		stats = all[videoID]
		fn(&stats)
		all[videoID] = stats
		return storage.SaveJSON(ctx, s.storage, StatsKey, all)
	})
	return stats, err
}

func (s *Store) loadStats(ctx context.Context) map[string]domain.VideoStats {
	all := storage.LoadJSON[map[string]domain.VideoStats](ctx, s.storage, StatsKey, s.log)
	if all == nil {
		all = make(map[string]domain.VideoStats)
	}
	return all
}
