package redis

import (
	"context"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// DefaultChannelPrefix - префикс каналов pub/sub для уведомлений об изменениях.
const DefaultChannelPrefix = "apexmed:changes:"

// Store реализует Storage и Broadcaster поверх Redis.
// Уведомление публикуется в канал <prefix><key>, полезная нагрузка - origin отправителя.
type Store struct {
	client        *goredis.Client
	channelPrefix string
	log           logrus.FieldLogger
}

// Options - параметры подключения.
type Options struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string
}

// New создает хранилище и проверяет соединение.
func New(ctx context.Context, opts Options, log logrus.FieldLogger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to redis at %s", opts.Addr)
	}
	return NewWithClient(client, opts.ChannelPrefix, log), nil
}

// NewWithClient оборачивает уже созданный клиент.
func NewWithClient(client *goredis.Client, channelPrefix string, log logrus.FieldLogger) *Store {
	if channelPrefix == "" {
		channelPrefix = DefaultChannelPrefix
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{client: client, channelPrefix: channelPrefix, log: log}
}

// === Storage ===

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get key %s", key)
	}
	return value, nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to mget keys")
	}
	for i, v := range values {
		// Отсутствующий ключ приходит как nil
		if str, ok := v.(string); ok {
			result[keys[i]] = []byte(str)
		}
	}
	return result, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set key %s", key)
	}
	return nil
}

// === Broadcaster ===

func (s *Store) Publish(ctx context.Context, ev storage.Event) error {
	if err := s.client.Publish(ctx, s.channelPrefix+ev.Key, ev.Origin).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish change of %s", ev.Key)
	}
	return nil
}

// Subscribe возвращает управление только после подтверждения подписки сервером,
// поэтому события, опубликованные после возврата, не теряются.
func (s *Store) Subscribe(ctx context.Context, key, origin string, fn func(storage.Event)) error {
	pubsub := s.client.Subscribe(ctx, s.channelPrefix+key)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return errors.Wrapf(err, "failed to subscribe to %s", key)
	}

	messages := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					s.log.WithField("key", key).Info("redis subscription channel closed")
					return
				}
				ev := storage.Event{Key: key, Origin: msg.Payload}
				if storage.Deliverable(ev, key, origin) {
					fn(ev)
				}
			}
		}
	}()
	return nil
}

// Close закрывает клиент.
func (s *Store) Close() error {
	return s.client.Close()
}
