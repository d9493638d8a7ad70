package catalog

import (
	"context"
	"fmt"

	"github.com/UkralStul/apexmed-interactions/internal/dataloader"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/format"
)

// StatsReader читает счетчики просмотров и лайков видео.
type StatsReader interface {
	Stats(ctx context.Context, videoID string) domain.VideoStats
}

// ThumbnailURL возвращает превью видео: свое, если задано, иначе кадр из Mux.
func ThumbnailURL(v domain.Video) string {
	if v.ThumbnailURL != "" {
		return v.ThumbnailURL
	}
	if v.MuxPlaybackID != "" {
		return fmt.Sprintf("https://image.mux.com/%s/thumbnail.png?width=214&height=121&time=7", v.MuxPlaybackID)
	}
	return "/placeholder.svg"
}

// FeedID - идентификатор видео в ленте и в ключах хранилища.
func FeedID(v domain.Video) string {
	if v.MuxPlaybackID != "" {
		return v.MuxPlaybackID
	}
	return v.ID
}

// BuildFeed превращает видео каталога в карточки ленты.
// Счетчики комментариев загружаются одной пачкой через loaders; stats может быть nil.
func BuildFeed(ctx context.Context, videos []domain.Video, loaders *dataloader.Loaders, stats StatsReader) ([]domain.FeedItem, error) {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = FeedID(v)
	}

	counts := map[string]int{}
	if loaders != nil && len(ids) > 0 {
		var err error
		counts, err = loaders.CommentCounts(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]domain.FeedItem, len(videos))
	for i, v := range videos {
		item := domain.FeedItem{
			ID:            ids[i],
			Title:         v.Title,
			Thumbnail:     ThumbnailURL(v),
			Duration:      format.Minutes(v.Duration),
			Date:          v.CreatedAt,
			MuxPlaybackID: v.MuxPlaybackID,
			CommentCount:  counts[ids[i]],
		}
		if stats != nil {
			item.Views = stats.Stats(ctx, ids[i]).Views
		}
		items[i] = item
	}
	return items, nil
}
