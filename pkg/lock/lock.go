package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Manager provides a per-event exclusion lock backed by Redis. The bulk
// seating pass holds it for the whole run; manual assignments probe it so
// they never interleave with a running pass. The token check on release
// keeps an expired holder from deleting a newer owner's lock.
type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// Release only deletes the key when the caller still owns it.
const luaReleaseLock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseScript = redis.NewScript(luaReleaseLock)

func lockKey(eventID string) string {
	return "wedly:event:" + eventID + ":assign:lock"
}

// Acquire takes the per-event lock. The returned token must be passed to
// Release. ok is false when another holder owns the lock.
func (m *Manager) Acquire(ctx context.Context, eventID string, ttl time.Duration) (token string, ok bool, err error) {
	if m.client == nil {
		return "", false, fmt.Errorf("redis client not available")
	}

	token = uuid.NewString()
	ok, err = m.client.SetNX(ctx, lockKey(eventID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire event lock: %w", err)
	}
	return token, ok, nil
}

// Release frees the lock if the token still owns it.
func (m *Manager) Release(ctx context.Context, eventID, token string) error {
	if m.client == nil {
		return fmt.Errorf("redis client not available")
	}

	if err := releaseScript.Run(ctx, m.client, []string{lockKey(eventID)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release event lock: %w", err)
	}
	return nil
}

// IsHeld reports whether any holder currently owns the event lock.
func (m *Manager) IsHeld(ctx context.Context, eventID string) (bool, error) {
	if m.client == nil {
		return false, fmt.Errorf("redis client not available")
	}

	n, err := m.client.Exists(ctx, lockKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to probe event lock: %w", err)
	}
	return n > 0, nil
}
