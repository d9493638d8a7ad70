package gormstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// entry - строка таблицы key-value.
type entry struct {
	Key       string    `gorm:"column:kv_key;type:varchar(512);primaryKey"`
	Value     []byte    `gorm:"column:kv_value;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (entry) TableName() string { return "kv_entries" }

// Store реализует интерфейс Storage поверх реляционной БД через GORM.
type Store struct {
	db *gorm.DB
}

// NewPostgres создает хранилище в PostgreSQL.
func NewPostgres(dsn string) (*Store, error) {
	return open(postgres.Open(dsn))
}

// NewMySQL создает хранилище в MySQL. DSN должен содержать parseTime=true.
func NewMySQL(dsn string) (*Store, error) {
	return open(mysql.Open(dsn))
}

// NewSQLite создает хранилище в файле SQLite - локальный аналог localStorage профиля браузера.
func NewSQLite(path string) (*Store, error) {
	return open(sqlite.Open(path))
}

func open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	if err := s.db.WithContext(ctx).First(&e, "kv_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to read key %s", key)
	}
	return e.Value, nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	// Загружаем все ключи одним запросом
	var entries []entry
	if err := s.db.WithContext(ctx).Where("kv_key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read keys")
	}
	for _, e := range entries {
		result[e.Key] = e.Value
	}
	return result, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	// Upsert: последний писатель побеждает, слияния нет
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return errors.Wrapf(err, "failed to write key %s", key)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
