package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names in the durable store.
const (
	WatcherCollection      = "watcher"
	GroupProfileCollection = "group_profile"
	ActivityCollection     = "activity"
	NotificationCollection = "notification"
)

// PageQuery selects documents strictly past Cursor in the store's sort order.
// A nil Cursor means the first page.
type PageQuery struct {
	Cursor *primitive.ObjectID
	Limit  int64
}

// Point lookups return (nil, nil) when the document does not exist.

// WatcherStore is the identity half of the membership/identity store.
type WatcherStore interface {
	Insert(ctx context.Context, w models.Watcher) error
	InsertMany(ctx context.Context, ws []models.Watcher) error
	FindByWatcherID(ctx context.Context, watcherID string) (*models.Watcher, error)
	FindByWatcherIDs(ctx context.Context, watcherIDs []string) ([]models.Watcher, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]models.Watcher, error)
	// FindClashing returns watchers whose watcher_id or username is in the given sets.
	FindClashing(ctx context.Context, watcherIDs, usernames []string) ([]models.Watcher, error)
	ListWatcherIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, watcherID string) (*models.Watcher, error)
	DeleteMany(ctx context.Context, watcherIDs []string) (int64, error)
	// PageByWatcherIDs walks the given watchers in ascending _id order.
	PageByWatcherIDs(ctx context.Context, watcherIDs []string, q PageQuery) ([]models.Watcher, error)
}

// GroupStore is the membership half. Member and activity-index mutations are
// atomic find-one-and-update calls returning the new document.
type GroupStore interface {
	Insert(ctx context.Context, g models.GroupProfile) error
	// Find looks a group up; an empty tenant skips the ownership filter.
	Find(ctx context.Context, groupProfileID, tenant string) (*models.GroupProfile, error)
	AddMembers(ctx context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error)
	RemoveMembers(ctx context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error)
	PushActivity(ctx context.Context, groupProfileID, activityID string) error
	PullActivity(ctx context.Context, groupProfileID, activityID string) error
	// MembersOfAnyGroup returns the subset of watcherIDs belonging to at least one group.
	MembersOfAnyGroup(ctx context.Context, watcherIDs []string) ([]string, error)
}

// ActivityStore persists activities.
type ActivityStore interface {
	Insert(ctx context.Context, a models.Activity) (primitive.ObjectID, error)
	DeleteInGroup(ctx context.Context, id primitive.ObjectID, groupProfileID string) (*models.Activity, error)
	// PageByGroup returns newest first with Author joined.
	PageByGroup(ctx context.Context, groupProfileID string, q PageQuery) ([]models.Activity, error)
}

// NotificationStore persists notifications with embedded recipient statuses.
type NotificationStore interface {
	Insert(ctx context.Context, n models.Notification) (primitive.ObjectID, error)
	// InsertMany is unordered; documents are independent.
	InsertMany(ctx context.Context, ns []models.Notification) ([]primitive.ObjectID, error)
	// MarkRead flips watcherID's unread entry to read and returns the updated
	// document, or nil when no unread entry for watcherID exists.
	MarkRead(ctx context.Context, id primitive.ObjectID, watcherID string) (*models.Notification, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// TakeByActivity removes every notification of an activity, one document
	// at a time, returning each document as it was when removed.
	TakeByActivity(ctx context.Context, activityID primitive.ObjectID) ([]models.Notification, error)
	CountUnread(ctx context.Context, watcherID string) (int64, error)
	// PageForWatcher returns newest first with Author joined.
	PageForWatcher(ctx context.Context, watcherID string, q PageQuery) ([]models.Notification, error)
}

// Stores bundles the durable collaborators.
type Stores struct {
	Watchers      WatcherStore
	Groups        GroupStore
	Activities    ActivityStore
	Notifications NotificationStore
}
