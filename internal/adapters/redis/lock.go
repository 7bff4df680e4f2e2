package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another process already runs the entrypoint.
var ErrLockHeld = errors.New("entrypoint is locked by another run")

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes workflow runs per entrypoint through Redis, so two
// processes never execute the same graph concurrently. Locks expire after
// their TTL; a crashed run never wedges the entrypoint.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a locker sharing the recorder's client.
func NewLocker(client *backend.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "switchback:lock:"
	}
	return &Locker{client: client, prefix: prefix}
}

// unlockScript deletes the lock only when the caller still holds it, so a
// lock that expired and was re-acquired elsewhere is never released by the
// previous holder.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Acquire takes the lock for the entrypoint via SET NX or fails immediately
// with ErrLockHeld. Runs are interactive; callers report the conflict
// instead of queueing behind it.
func (l *Locker) Acquire(ctx context.Context, entrypoint string, ttl time.Duration) (UnlockFunc, error) {
	key := l.prefix + entrypoint
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{key}, token).Err()
	}, nil
}
