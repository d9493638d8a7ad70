package dataloader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader"
	"github.com/pkg/errors"
)

type contextKey string

const key = contextKey("dataloaders")

// CommentCounter считает комментарии сразу для нескольких видео.
type CommentCounter interface {
	CountMany(ctx context.Context, videoIDs []string) (map[string]int, error)
}

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	CommentCountByVideoID *dataloader.Loader
}

// New создает лоадеры. Запросы, пришедшие в пределах wait, склеиваются в один вызов хранилища.
func New(counter CommentCounter, wait time.Duration) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		videoIDs := keys.Keys()

		// Один запрос к хранилищу на всю пачку
		counts, err := counter.CountMany(ctx, videoIDs)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, videoID := range videoIDs {
			results[i] = &dataloader.Result{Data: counts[videoID]}
		}
		return results
	}

	return &Loaders{
		CommentCountByVideoID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(wait)),
	}
}

// CommentCount возвращает число комментариев видео через батч-лоадер.
func (l *Loaders) CommentCount(ctx context.Context, videoID string) (int, error) {
	data, err := l.CommentCountByVideoID.Load(ctx, dataloader.StringKey(videoID))()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count comments of video %s", videoID)
	}
	count, _ := data.(int)
	return count, nil
}

// CommentCounts загружает счетчики для списка видео одной пачкой.
func (l *Loaders) CommentCounts(ctx context.Context, videoIDs []string) (map[string]int, error) {
	data, errs := l.CommentCountByVideoID.LoadMany(ctx, dataloader.NewKeysFromStrings(videoIDs))()
	result := make(map[string]int, len(videoIDs))
	for i, videoID := range videoIDs {
		if len(errs) > i && errs[i] != nil {
			return nil, errors.Wrapf(errs[i], "failed to count comments of video %s", videoID)
		}
		count, _ := data[i].(int)
		result[videoID] = count
	}
	return result, nil
}

// WithLoaders помещает лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста; nil, если их там нет.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}
