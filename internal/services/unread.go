package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// UnreadCounter keeps the counter cache a projection of the unread entries in
// the notification store. Only Count creates an entry; every other path moves
// an existing entry by one and leaves missing entries missing.
//
// Accepted drift: creation increments every warm recipient while retraction
// and acknowledgement decrement only unread ones, so a lost decrement inflates
// the entry until it expires. Baselines race the same way: a Bump landing
// between CountUnread and SetWithTTL finds no entry and is skipped, so the new
// baseline undercounts until it expires (the token TTL).
type UnreadCounter struct {
	cache         CounterCache
	notifications NotificationStore
	ttl           time.Duration
	log           zerolog.Logger
}

func NewUnreadCounter(cache CounterCache, notifications NotificationStore, ttl time.Duration, log zerolog.Logger) *UnreadCounter {
	return &UnreadCounter{cache: cache, notifications: notifications, ttl: ttl, log: log}
}

// Count returns the cached value verbatim, or establishes a baseline from the
// notification store with the session TTL.
func (u *UnreadCounter) Count(ctx context.Context, watcherID string) (int64, error) {
	n, ok, err := u.cache.Get(ctx, watcherID)
	if err != nil {
		u.log.Warn().Err(err).Str("watcher_id", watcherID).Msg("unread cache read failed, counting from store")
	} else if ok {
		return n, nil
	}

	n, err = u.notifications.CountUnread(ctx, watcherID)
	if err != nil {
		return 0, err
	}
	if err := u.cache.SetWithTTL(ctx, watcherID, n, u.ttl); err != nil {
		u.log.Warn().Err(err).Str("watcher_id", watcherID).Msg("unread baseline not cached")
	}
	return n, nil
}

// Bump adds one to every warm recipient entry.
func (u *UnreadCounter) Bump(ctx context.Context, watcherIDs []string) {
	u.shift(ctx, watcherIDs, "incr", u.cache.IncrEach)
}

// Retract subtracts one per occurrence from warm entries, clamped at zero.
func (u *UnreadCounter) Retract(ctx context.Context, watcherIDs []string) {
	u.shift(ctx, watcherIDs, "decr", u.cache.DecrEach)
}

// shift batch-reads the entries and applies op to the warm ones in one
// pipeline. A failed write invalidates the entry so the next read
// re-establishes it.
func (u *UnreadCounter) shift(ctx context.Context, watcherIDs []string, name string, op func(context.Context, []string) []string) {
	if len(watcherIDs) == 0 {
		return
	}
	warm, err := u.cache.MGet(ctx, watcherIDs)
	if err != nil {
		u.log.Warn().Err(err).Str("op", name).Int("recipients", len(watcherIDs)).Msg("unread cache batch read failed")
		u.invalidate(ctx, watcherIDs)
		return
	}
	targets := make([]string, 0, len(warm))
	for _, id := range watcherIDs {
		if _, ok := warm[id]; ok {
			targets = append(targets, id)
		}
	}
	if failed := op(ctx, targets); len(failed) > 0 {
		u.log.Warn().Str("op", name).Strs("watcher_ids", failed).Msg("unread cache update failed")
		u.invalidate(ctx, failed)
	}
}

// Invalidate drops entries whose durable state is unknown after a failed write.
func (u *UnreadCounter) Invalidate(ctx context.Context, watcherIDs []string) {
	u.invalidate(ctx, watcherIDs)
}

func (u *UnreadCounter) invalidate(ctx context.Context, watcherIDs []string) {
	if len(watcherIDs) == 0 {
		return
	}
	if err := u.cache.Invalidate(ctx, watcherIDs...); err != nil {
		u.log.Error().Err(err).Strs("watcher_ids", watcherIDs).Msg("unread cache invalidation failed")
	}
}

// Acknowledged applies a read acknowledgement. A missing entry is reported as
// ErrCacheInconsistency instead of being fabricated.
func (u *UnreadCounter) Acknowledged(ctx context.Context, watcherID string) error {
	_, ok, err := u.cache.Get(ctx, watcherID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrCacheInconsistency, "cache of watcher_id = %s is not exist", watcherID)
	}
	if _, ok, err = u.cache.Decr(ctx, watcherID); err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrCacheInconsistency, "cache of watcher_id = %s expired during acknowledge", watcherID)
	}
	return nil
}
