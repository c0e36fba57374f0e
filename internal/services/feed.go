package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Paginator serves cursor-paged feeds grouped by UTC calendar day. Pages are
// not snapshots; inserts between fetches may shift later pages.
type Paginator struct {
	stores Stores
	limit  int64
}

func NewPaginator(stores Stores, defaultLimit int) *Paginator {
	return &Paginator{stores: stores, limit: clampLimit(int64(defaultLimit), DefaultPageLimit)}
}

func clampLimit(limit, fallback int64) int64 {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// ActivityFeed pages a group's activities newest first.
func (p *Paginator) ActivityFeed(ctx context.Context, groupProfileID, cursor string, limit int) (*models.Page[models.Activity], error) {
	after, err := parseCursor("last_activity_id", cursor)
	if err != nil {
		return nil, err
	}
	group, err := p.stores.Groups.Find(ctx, groupProfileID, "")
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, notFoundf("group_profile_id = %s does not exist", groupProfileID)
	}

	n := clampLimit(int64(limit), p.limit)
	// one extra row tells whether another page exists
	items, err := p.stores.Activities.PageByGroup(ctx, groupProfileID, PageQuery{Cursor: after, Limit: n + 1})
	if err != nil {
		return nil, err
	}
	return buildPage(items, n,
		func(a models.Activity) string { return a.ID.Hex() },
		func(a models.Activity) time.Time { return a.CreatedAt }), nil
}

// NotificationFeed pages a watcher's notifications newest first, each reduced
// to the watcher's own status entry.
func (p *Paginator) NotificationFeed(ctx context.Context, watcherID, cursor string, limit int) (*models.Page[models.NotificationView], error) {
	after, err := parseCursor("last_notification_id", cursor)
	if err != nil {
		return nil, err
	}
	watcher, err := p.stores.Watchers.FindByWatcherID(ctx, watcherID)
	if err != nil {
		return nil, err
	}
	if watcher == nil {
		return nil, notFoundf("watcher_id = %s is not exist", watcherID)
	}

	n := clampLimit(int64(limit), p.limit)
	items, err := p.stores.Notifications.PageForWatcher(ctx, watcherID, PageQuery{Cursor: after, Limit: n + 1})
	if err != nil {
		return nil, err
	}
	views := make([]models.NotificationView, 0, len(items))
	for _, it := range items {
		views = append(views, it.ViewFor(watcherID))
	}
	return buildPage(views, n,
		func(v models.NotificationView) string { return v.ID.Hex() },
		func(v models.NotificationView) time.Time { return v.CreatedAt }), nil
}

func buildPage[T any](items []T, limit int64, cursorOf func(T) string, createdAt func(T) time.Time) *models.Page[T] {
	page := &models.Page[T]{}
	if int64(len(items)) > limit {
		page.HasMore = true
		items = items[:limit]
	}
	if page.HasMore && len(items) > 0 {
		page.NextCursor = cursorOf(items[len(items)-1])
	}
	page.Days = models.GroupByDay(items, createdAt)
	return page
}
