package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix - префикс переменных окружения: APEXMED_STORAGE_TYPE перекрывает storage.type.
const EnvPrefix = "APEXMED"

var configPaths = []string{
	"./config",
	"../config",
	".",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.type", StorageSQLite)
	v.SetDefault("storage.sqlite_path", "apexmed.db")
	v.SetDefault("notify.type", NotifyNone)
	v.SetDefault("lock.type", LockNone)
	v.SetDefault("lock.expiry", 8*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channel_prefix", "apexmed:changes:")
	v.SetDefault("rabbitmq.exchange", "apexmed.changes")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "apexmed/")
	v.SetDefault("catalog.cache_ttl", 60*time.Second)
	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.rate_interval", 500*time.Millisecond)
	v.SetDefault("catalog.rate_burst", 2)
	v.SetDefault("session.markers_key", "viewed-videos")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load читает config.yml. Если path пуст, файл ищется в ./config, ../config и текущем каталоге;
// отсутствие файла не ошибка - тогда действуют значения по умолчанию и переменные окружения.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config.yml")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
		logrus.Debug("config file not found, using defaults")
	} else {
		logrus.Debugf("config loaded from %s", v.ConfigFileUsed())
	}

	// Значения читаются по ключам, чтобы переменные окружения работали и для ключей, которых нет в файле
	cfg := &Config{
		Storage: Storage{
			Type:        strings.ToLower(v.GetString("storage.type")),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			MySQLDSN:    v.GetString("storage.mysql_dsn"),
		},
		Notify: Notify{Type: strings.ToLower(v.GetString("notify.type"))},
		Lock: Lock{
			Type:   strings.ToLower(v.GetString("lock.type")),
			Expiry: v.GetDuration("lock.expiry"),
		},
		Redis: Redis{
			Addr:          v.GetString("redis.addr"),
			Password:      v.GetString("redis.password"),
			DB:            v.GetInt("redis.db"),
			ChannelPrefix: v.GetString("redis.channel_prefix"),
		},
		RabbitMQ: RabbitMQ{
			URL:      v.GetString("rabbitmq.url"),
			Exchange: v.GetString("rabbitmq.exchange"),
		},
		S3: S3{
			Bucket:    v.GetString("s3.bucket"),
			Prefix:    v.GetString("s3.prefix"),
			Region:    v.GetString("s3.region"),
			Endpoint:  v.GetString("s3.endpoint"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
		},
		Catalog: Catalog{
			URL:          v.GetString("catalog.url"),
			CacheTTL:     v.GetDuration("catalog.cache_ttl"),
			Timeout:      v.GetDuration("catalog.timeout"),
			RateInterval: v.GetDuration("catalog.rate_interval"),
			RateBurst:    v.GetInt("catalog.rate_burst"),
		},
		User: User{
			ID:        v.GetString("user.id"),
			Name:      v.GetString("user.name"),
			AvatarURL: v.GetString("user.avatar_url"),
		},
		Session: Session{
			PersistMarkers: v.GetBool("session.persist_markers"),
			MarkersKey:     v.GetString("session.markers_key"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет, что выбранные бэкенды известны и для них заданы обязательные параметры.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageRedis:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for sqlite storage")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for postgres storage")
		}
	case StorageMySQL:
		if c.Storage.MySQLDSN == "" {
			return errors.New("storage.mysql_dsn is required for mysql storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for s3 storage")
		}
	default:
		return errors.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	switch c.Notify.Type {
	case NotifyNone, NotifyMemory, NotifyRedis:
	case NotifyRabbitMQ:
		if c.RabbitMQ.URL == "" {
			return errors.New("rabbitmq.url is required for rabbitmq notifications")
		}
	default:
		return errors.Errorf("unknown notify type: %s", c.Notify.Type)
	}

	switch c.Lock.Type {
	case LockNone, LockMemory, LockRedis:
	default:
		return errors.Errorf("unknown lock type: %s", c.Lock.Type)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Errorf("unknown log format: %s", c.Log.Format)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "invalid log.level")
	}
	return nil
}
