package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Storage определяет контракт для key-value хранилищ.
// Каждая операция атомарна в пределах одного ключа, транзакций нет.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany возвращает только найденные ключи.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Event - уведомление об изменении ключа.
// Origin - идентификатор контекста выполнения, который сделал изменение.
type Event struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Broadcaster рассылает уведомления об изменениях другим контекстам выполнения.
// Подписчик с тем же Origin, что и у события, его не получает.
type Broadcaster interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe действует, пока не завершится ctx.
	Subscribe(ctx context.Context, key, origin string, fn func(Event)) error
}

// Locker сериализует чтение-изменение-запись одного ключа между контекстами выполнения.
// Без Locker одновременные записи разрешаются по правилу "последний побеждает".
type Locker interface {
	// Lock ждет блокировку ключа, пока не завершится ctx. Возвращенную функцию нужно вызвать ровно один раз.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// WithLock выполняет fn под блокировкой key; при nil locker просто вызывает fn.
func WithLock(ctx context.Context, locker Locker, key string, fn func() error) error {
	if locker == nil {
		return fn()
	}
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "failed to lock %s", key)
	}
	defer unlock()
	return fn()
}

// NewOrigin создает идентификатор нового контекста выполнения (вкладки, процесса).
func NewOrigin() string {
	return uuid.NewString()
}

// Deliverable решает, должен ли подписчик получить событие.
func Deliverable(ev Event, key, origin string) bool {
	return ev.Key == key && ev.Origin != origin
}
