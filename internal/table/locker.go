package table

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sys/unix"

	"coleta-seletiva/internal/domain"
)

// Locker grants exclusive access to a named table.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

const (
	minLockBackoff = 2 * time.Millisecond
	maxLockBackoff = 50 * time.Millisecond
)

// waitBackoff sleeps for the current backoff or until ctx is done.
func waitBackoff(ctx context.Context, backoff *time.Duration) error {
	timer := time.NewTimer(*backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	*backoff *= 2
	if *backoff > maxLockBackoff {
		*backoff = maxLockBackoff
	}
	return nil
}

// mutexSet holds one mutex per table name for in-process serialization.
type mutexSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (m *mutexSet) get(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locks == nil {
		m.locks = make(map[string]*sync.Mutex)
	}
	l, ok := m.locks[name]
	if !ok {
		l = &sync.Mutex{}
		m.locks[name] = l
	}
	return l
}

// FlockLocker serializes goroutines with a mutex and processes with an
// advisory flock on <dir>/<name>.lock.
type FlockLocker struct {
	dir   string
	local mutexSet
}

func NewFlockLocker(dir string) *FlockLocker {
	return &FlockLocker{dir: dir}
}

func (l *FlockLocker) Lock(ctx context.Context, name string) (func(), error) {
	mu := l.local.get(name)
	mu.Lock()

	path := filepath.Join(l.dir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("%w: open lock %s: %v", domain.ErrStorageIO, path, err)
	}

	backoff := minLockBackoff
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			mu.Unlock()
			return nil, fmt.Errorf("%w: flock %s: %v", domain.ErrStorageIO, path, err)
		}
		if werr := waitBackoff(ctx, &backoff); werr != nil {
			_ = f.Close()
			mu.Unlock()
			return nil, werr
		}
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		mu.Unlock()
	}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisClient is the part of go-redis the locker needs. *redis.Client
// satisfies it.
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker is used when several hosts share one data directory over a
// network volume where flock cannot be trusted.
type RedisLocker struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	local  mutexSet
}

func NewRedisLocker(client RedisClient, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	mu := l.local.get(name)
	mu.Lock()

	key := fmt.Sprintf("%stable:%s:lock", l.prefix, name)
	token := uuid.New().String()

	backoff := minLockBackoff
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			mu.Unlock()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: acquire %s: %v", domain.ErrStorageIO, key, err)
		}
		if ok {
			break
		}
		if werr := waitBackoff(ctx, &backoff); werr != nil {
			mu.Unlock()
			return nil, werr
		}
	}

	return func() {
		// Released with a fresh context so a cancelled request still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		mu.Unlock()
	}, nil
}
