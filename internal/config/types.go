package config

import "time"

// Типы бэкендов.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
	StorageRedis    = "redis"
	StorageS3       = "s3"

	NotifyNone     = "none"
	NotifyMemory   = "memory"
	NotifyRedis    = "redis"
	NotifyRabbitMQ = "rabbitmq"

	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	Storage  Storage  `yaml:"storage" mapstructure:"storage"`
	Notify   Notify   `yaml:"notify" mapstructure:"notify"`
	Lock     Lock     `yaml:"lock" mapstructure:"lock"`
	Redis    Redis    `yaml:"redis" mapstructure:"redis"`
	RabbitMQ RabbitMQ `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	S3       S3       `yaml:"s3" mapstructure:"s3"`
	Catalog  Catalog  `yaml:"catalog" mapstructure:"catalog"`
	User     User     `yaml:"user" mapstructure:"user"`
	Session  Session  `yaml:"session" mapstructure:"session"`
	Log      Log      `yaml:"log" mapstructure:"log"`
}

type Storage struct {
	Type        string `yaml:"type"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
	MySQLDSN    string `yaml:"mysql_dsn" mapstructure:"mysql_dsn"`
}

type Notify struct {
	Type string `yaml:"type"`
}

type Lock struct {
	Type   string        `yaml:"type"`
	Expiry time.Duration `yaml:"expiry"`
}

type Redis struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix" mapstructure:"channel_prefix"`
}

type RabbitMQ struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type S3 struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
}

type Catalog struct {
	URL          string        `yaml:"url"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Timeout      time.Duration `yaml:"timeout"`
	RateInterval time.Duration `yaml:"rate_interval" mapstructure:"rate_interval"`
	RateBurst    int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// User - пользователь, от имени которого работает CLI. Пустой ID означает, что никто не вошел.
type User struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	AvatarURL string `yaml:"avatar_url" mapstructure:"avatar_url"`
}

type Session struct {
	// PersistMarkers хранит отметки просмотров в хранилище, а не в памяти процесса.
	PersistMarkers bool   `yaml:"persist_markers" mapstructure:"persist_markers"`
	MarkersKey     string `yaml:"markers_key" mapstructure:"markers_key"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
