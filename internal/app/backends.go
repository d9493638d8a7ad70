package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UkralStul/apexmed-interactions/internal/config"
	"github.com/UkralStul/apexmed-interactions/internal/storage"
	"github.com/UkralStul/apexmed-interactions/internal/storage/gormstore"
	"github.com/UkralStul/apexmed-interactions/internal/storage/inmemory"
	"github.com/UkralStul/apexmed-interactions/internal/storage/rabbitmq"
	"github.com/UkralStul/apexmed-interactions/internal/storage/redis"
	"github.com/UkralStul/apexmed-interactions/internal/storage/s3store"
)

// backends создает хранилище, рассылку и блокировки по конфигурации.
// Подключение к Redis одно на все три роли.
type backends struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	redis   *redis.Store
	closers []func() error
}

func newBackends(cfg *config.Config, log logrus.FieldLogger) *backends {
	return &backends{cfg: cfg, log: log}
}

func (b *backends) redisStore(ctx context.Context) (*redis.Store, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	store, err := redis.New(ctx, redis.Options{
		Addr:          b.cfg.Redis.Addr,
		Password:      b.cfg.Redis.Password,
		DB:            b.cfg.Redis.DB,
		ChannelPrefix: b.cfg.Redis.ChannelPrefix,
	}, b.log.WithField("component", "redis"))
	if err != nil {
		return nil, err
	}
	b.redis = store
	b.closers = append(b.closers, store.Close)
	return store, nil
}

func (b *backends) storage(ctx context.Context) (storage.Storage, error) {
	switch b.cfg.Storage.Type {
	case config.StorageMemory:
		return inmemory.New(), nil
	case config.StorageSQLite:
		return b.gorm(gormstore.NewSQLite(b.cfg.Storage.SQLitePath))
	case config.StoragePostgres:
		return b.gorm(gormstore.NewPostgres(b.cfg.Storage.PostgresDSN))
	case config.StorageMySQL:
		return b.gorm(gormstore.NewMySQL(b.cfg.Storage.MySQLDSN))
	case config.StorageRedis:
		return b.redisStore(ctx)
	case config.StorageS3:
		return s3store.New(ctx, s3store.Options{
			Bucket:    b.cfg.S3.Bucket,
			Prefix:    b.cfg.S3.Prefix,
			Region:    b.cfg.S3.Region,
			Endpoint:  b.cfg.S3.Endpoint,
			AccessKey: b.cfg.S3.AccessKey,
			SecretKey: b.cfg.S3.SecretKey,
		})
	default:
		return nil, errors.Errorf("unknown storage type: %s", b.cfg.Storage.Type)
	}
}

func (b *backends) gorm(store *gormstore.Store, err error) (storage.Storage, error) {
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, store.Close)
	return store, nil
}

func (b *backends) broadcaster(ctx context.Context) (storage.Broadcaster, error) {
	switch b.cfg.Notify.Type {
	case config.NotifyNone:
		return nil, nil
	case config.NotifyMemory:
		return inmemory.NewHub(), nil
	case config.NotifyRedis:
		return b.redisStore(ctx)
	case config.NotifyRabbitMQ:
		br, err := rabbitmq.New(b.cfg.RabbitMQ.URL, b.cfg.RabbitMQ.Exchange, b.log.WithField("component", "rabbitmq"))
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, br.Close)
		return br, nil
	default:
		return nil, errors.Errorf("unknown notify type: %s", b.cfg.Notify.Type)
	}
}

func (b *backends) locker(ctx context.Context) (storage.Locker, error) {
	switch b.cfg.Lock.Type {
	case config.LockNone:
		return nil, nil
	case config.LockMemory:
		return inmemory.NewLocker(), nil
	case config.LockRedis:
		store, err := b.redisStore(ctx)
		if err != nil {
			return nil, err
		}
		return store.Locker(b.cfg.Lock.Expiry), nil
	default:
		return nil, errors.Errorf("unknown lock type: %s", b.cfg.Lock.Type)
	}
}

func (b *backends) close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
