package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	lockPrefix        = "apexmed:lock:"
	defaultLockExpiry = 8 * time.Second
)

// Locker - распределенная блокировка ключей через redsync.
// Блокировка истекает сама через expiry, если держатель упал, не сняв ее.
type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	log    logrus.FieldLogger
}

func NewLocker(client *goredis.Client, expiry time.Duration, log logrus.FieldLogger) *Locker {
	if expiry <= 0 {
		expiry = defaultLockExpiry
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Locker{
		rs:     redsync.New(redsyncredis.NewPool(client)),
		expiry: expiry,
		log:    log,
	}
}

// Locker возвращает блокировки поверх того же клиента.
func (s *Store) Locker(expiry time.Duration) *Locker {
	return NewLocker(s.client, expiry, s.log)
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(lockPrefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(64),
		redsync.WithRetryDelay(50*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to acquire redis lock for %s", key)
	}

	return func() {
		// Снятие не зависит от ctx операции: он мог уже завершиться
		if ok, err := mutex.UnlockContext(context.Background()); err != nil || !ok {
			l.log.WithError(err).WithField("key", key).Warn("redis lock was not released cleanly")
		}
	}, nil
}
