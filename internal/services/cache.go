package services

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// UnreadKeyPrefix is the Redis key prefix for per-watcher unread counters
	UnreadKeyPrefix = "unread:"
)

// CounterCache is the ephemeral per-watcher counter store. Only per-key
// atomicity is assumed.
type CounterCache interface {
	Get(ctx context.Context, watcherID string) (int64, bool, error)
	// MGet returns the warm entries among watcherIDs.
	MGet(ctx context.Context, watcherIDs []string) (map[string]int64, error)
	// IncrEach adds one to each existing entry in a single round trip and
	// returns the ids whose write failed. Missing entries stay missing.
	IncrEach(ctx context.Context, watcherIDs []string) []string
	// DecrEach is IncrEach subtracting one, clamped at zero.
	DecrEach(ctx context.Context, watcherIDs []string) []string
	// Decr subtracts one from an existing positive entry, clamping at zero.
	Decr(ctx context.Context, watcherID string) (int64, bool, error)
	SetWithTTL(ctx context.Context, watcherID string, value int64, ttl time.Duration) error
	// Invalidate drops entries so the next read recomputes them.
	Invalidate(ctx context.Context, watcherIDs ...string) error
}

// Both scripts return -1 when the key is absent so an entry that expired
// between MGET and the write is never re-created without TTL.
var (
	incrIfPresent = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('INCR', KEYS[1])
`)
	decrClamped = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return -1
end
if tonumber(v) <= 0 then
  return 0
end
return redis.call('DECR', KEYS[1])
`)
)

// RedisCounterCache stores counters as plain integer strings under UnreadKeyPrefix.
type RedisCounterCache struct {
	client redis.UniversalClient
}

func NewRedisCounterCache(client redis.UniversalClient) *RedisCounterCache {
	return &RedisCounterCache{client: client}
}

// UnreadKey generates the cache key for a watcher
func UnreadKey(watcherID string) string {
	return UnreadKeyPrefix + watcherID
}

func (c *RedisCounterCache) Get(ctx context.Context, watcherID string) (int64, bool, error) {
	v, err := c.client.Get(ctx, UnreadKey(watcherID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "get unread counter")
	}
	return v, true, nil
}

func (c *RedisCounterCache) MGet(ctx context.Context, watcherIDs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	if len(watcherIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(watcherIDs))
	for i, id := range watcherIDs {
		keys[i] = UnreadKey(id)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "mget unread counters")
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		out[watcherIDs[i]] = n
	}
	return out, nil
}

func (c *RedisCounterCache) IncrEach(ctx context.Context, watcherIDs []string) []string {
	return c.each(ctx, incrIfPresent, watcherIDs)
}

func (c *RedisCounterCache) DecrEach(ctx context.Context, watcherIDs []string) []string {
	return c.each(ctx, decrClamped, watcherIDs)
}

// each pipelines one script call per id. EVAL rather than EVALSHA: a
// NOSCRIPT reply cannot be retried inside a pipeline.
func (c *RedisCounterCache) each(ctx context.Context, script *redis.Script, watcherIDs []string) []string {
	if len(watcherIDs) == 0 {
		return nil
	}
	cmds := make([]*redis.Cmd, len(watcherIDs))
	// per-command errors are inspected below
	_, _ = c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range watcherIDs {
			cmds[i] = script.Eval(ctx, pipe, []string{UnreadKey(id)})
		}
		return nil
	})
	var failed []string
	for i, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			failed = append(failed, watcherIDs[i])
		}
	}
	return failed
}

func (c *RedisCounterCache) Decr(ctx context.Context, watcherID string) (int64, bool, error) {
	n, err := decrClamped.Run(ctx, c.client, []string{UnreadKey(watcherID)}).Int64()
	if err != nil {
		return 0, false, errors.Wrap(err, "decr unread counter")
	}
	if n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}

func (c *RedisCounterCache) SetWithTTL(ctx context.Context, watcherID string, value int64, ttl time.Duration) error {
	err := c.client.Set(ctx, UnreadKey(watcherID), value, ttl).Err()
	return errors.Wrap(err, "set unread counter")
}

func (c *RedisCounterCache) Invalidate(ctx context.Context, watcherIDs ...string) error {
	if len(watcherIDs) == 0 {
		return nil
	}
	keys := make([]string, len(watcherIDs))
	for i, id := range watcherIDs {
		keys[i] = UnreadKey(id)
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "invalidate unread counters")
}
