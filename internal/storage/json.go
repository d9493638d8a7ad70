package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LoadJSON читает ключ и декодирует JSON.
// Отсутствующий ключ, ошибка чтения или битые данные дают нулевое значение T:
// это трактуется как "данных еще нет", а не как фатальная ошибка.
func LoadJSON[T any](ctx context.Context, s Storage, key string, log logrus.FieldLogger) T {
	var zero T

	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).WithField("key", key).Warn("failed to read key, using empty value")
		}
		return zero
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.WithError(err).WithField("key", key).Warn("malformed record, using empty value")
		return zero
	}
	return v
}

// SaveJSON кодирует значение в JSON и записывает его целиком.
func SaveJSON(ctx context.Context, s Storage, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", key)
	}
	return s.Set(ctx, key, raw)
}
