package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment is a file posted with an activity.
type Attachment struct {
	Name string
	Data []byte
}

// NewActivity is the input of Engine.CreateActivity. Tenant must match the
// group's creator.
type NewActivity struct {
	Tenant         string
	GroupProfileID string
	WatcherID      string
	Content        string
	File           *Attachment
}

// CreatedActivity reports what a creation produced.
type CreatedActivity struct {
	Activity      models.Activity
	Notifications []models.Notification
	Tagged        []string
	Untagged      []string
}

// Engine derives notifications from activity events and keeps the unread
// counters in step with them. The notification store is written first and the
// counter cache second; no transaction spans the two.
type Engine struct {
	stores   Stores
	mentions *MentionResolver
	unread   *UnreadCounter
	uploader FileUploader
	log      zerolog.Logger
	now      func() time.Time
}

func NewEngine(stores Stores, unread *UnreadCounter, uploader FileUploader, log zerolog.Logger) *Engine {
	if uploader == nil {
		uploader = NoUploader{}
	}
	return &Engine{
		stores:   stores,
		mentions: NewMentionResolver(stores.Watchers),
		unread:   unread,
		uploader: uploader,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Partition splits members minus the author into explicitly tagged and
// untagged recipients. A broadcast puts everyone in untagged.
func Partition(members []string, authorID string, t models.Targeting) (tagged, untagged []string) {
	seen := make(map[string]bool, len(members))
	for _, id := range members {
		if id == authorID || seen[id] {
			continue
		}
		seen[id] = true
		if t.Includes(id) {
			tagged = append(tagged, id)
		} else {
			untagged = append(untagged, id)
		}
	}
	return tagged, untagged
}

// CreateActivity posts an activity and fans out its notifications.
func (e *Engine) CreateActivity(ctx context.Context, in NewActivity) (*CreatedActivity, error) {
	group, err := e.stores.Groups.Find(ctx, in.GroupProfileID, in.Tenant)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, notFoundf("group profile id = %s does not exist", in.GroupProfileID)
	}
	author, err := e.stores.Watchers.FindByWatcherID(ctx, in.WatcherID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, notFoundf("watcher_id = %s not exist", in.WatcherID)
	}

	// the upload completes before anything is written
	var file *models.FileRef
	if in.File != nil {
		up, err := e.uploader.Upload(ctx, in.File.Name, in.File.Data)
		if err != nil {
			return nil, err
		}
		file = &models.FileRef{UUID: up.UUID, URL: up.URL, Name: in.File.Name}
	}

	now := e.now()
	members := group.WatcherIDs
	if !group.HasMember(author.WatcherID) {
		joined, err := e.stores.Groups.AddMembers(ctx, group.GroupProfileID, []string{author.WatcherID}, now)
		if err != nil {
			return nil, err
		}
		if joined == nil {
			return nil, notFoundf("group profile id = %s does not exist", in.GroupProfileID)
		}
		members = joined.WatcherIDs
	}

	targeting, err := e.mentions.Resolve(ctx, in.Content, author.Username, members)
	if err != nil {
		return nil, err
	}

	activity := models.Activity{
		GroupProfileID: group.GroupProfileID,
		Content:        in.Content,
		File:           file,
		Targeting:      targeting,
		WatcherID:      author.WatcherID,
		Audit:          models.NewAudit(author.Username, now),
	}
	activity.ID, err = e.stores.Activities.Insert(ctx, activity)
	if err != nil {
		return nil, err
	}
	if err := e.stores.Groups.PushActivity(ctx, group.GroupProfileID, activity.ID.Hex()); err != nil {
		e.log.Warn().Err(err).
			Str("group_profile_id", group.GroupProfileID).
			Str("activity_id", activity.ID.Hex()).
			Msg("activity index push failed, activity kept")
	}
	pub := author.Public()
	activity.Author = &pub

	tagged, untagged := Partition(members, author.WatcherID, targeting)
	notifications := e.activityNotifications(group, author, activity.ID, tagged, untagged, now)
	recipients := append(append([]string{}, untagged...), tagged...)

	if len(notifications) > 0 {
		ids, err := e.stores.Notifications.InsertMany(ctx, notifications)
		if err != nil {
			// an unordered insert may have landed partially
			e.unread.Invalidate(ctx, recipients)
			return nil, err
		}
		for i := range notifications {
			notifications[i].ID = ids[i]
		}
		e.unread.Bump(ctx, recipients)
	}

	e.log.Info().
		Str("group_profile_id", group.GroupProfileID).
		Str("activity_id", activity.ID.Hex()).
		Bool("tag_all", targeting.Broadcast).
		Int("tagged", len(tagged)).
		Int("untagged", len(untagged)).
		Msg("activity created")

	return &CreatedActivity{
		Activity:      activity,
		Notifications: notifications,
		Tagged:        tagged,
		Untagged:      untagged,
	}, nil
}

func (e *Engine) activityNotifications(group *models.GroupProfile, author *models.Watcher, activityID primitive.ObjectID, tagged, untagged []string, now time.Time) []models.Notification {
	var out []models.Notification
	build := func(content string, recipients []string) models.Notification {
		aid := activityID
		wid := author.WatcherID
		return models.Notification{
			Content:           content,
			WatcherNotiStatus: models.NewRecipients(recipients),
			ActivityID:        &aid,
			AuthorID:          &wid,
			Audit:             models.NewAudit(group.CreatedBy, now),
		}
	}
	if len(untagged) > 0 {
		out = append(out, build(fmt.Sprintf("%s just commented", author.Username), untagged))
	}
	if len(tagged) > 0 {
		out = append(out, build(fmt.Sprintf("%s just mentioned you in group_profile id = %s", author.Username, group.GroupProfileID), tagged))
	}
	return out
}

// DeleteActivity removes an activity and retracts its notifications. Counters
// are decremented only for recipients that had not read them yet.
func (e *Engine) DeleteActivity(ctx context.Context, tenant, groupProfileID, activityID string) error {
	oid, err := ParseObjectID(activityID)
	if err != nil {
		return err
	}
	group, err := e.stores.Groups.Find(ctx, groupProfileID, tenant)
	if err != nil {
		return err
	}
	if group == nil {
		return notFoundf("group_profile_id = %s does not exist", groupProfileID)
	}
	activity, err := e.stores.Activities.DeleteInGroup(ctx, oid, groupProfileID)
	if err != nil {
		return err
	}
	if activity == nil {
		return notFoundf("_id = %s does not exist", activityID)
	}

	taken, takeErr := e.stores.Notifications.TakeByActivity(ctx, oid)
	var unread []string
	for _, n := range taken {
		unread = append(unread, n.UnreadRecipients()...)
	}
	e.unread.Retract(ctx, unread)

	if err := e.stores.Groups.PullActivity(ctx, groupProfileID, activityID); err != nil {
		e.log.Warn().Err(err).
			Str("group_profile_id", groupProfileID).
			Str("activity_id", activityID).
			Msg("activity index pull failed")
	}
	if takeErr != nil {
		return takeErr
	}

	e.log.Info().
		Str("group_profile_id", groupProfileID).
		Str("activity_id", activityID).
		Int("notifications", len(taken)).
		Int("retracted_unread", len(unread)).
		Msg("activity deleted")
	return nil
}

// Acknowledge marks one notification read for one watcher and decrements the
// watcher's counter. The durable flip stands even when the counter is missing.
func (e *Engine) Acknowledge(ctx context.Context, notificationID, watcherID string) (*models.NotificationView, error) {
	oid, err := ParseObjectID(notificationID)
	if err != nil {
		return nil, err
	}
	watcher, err := e.stores.Watchers.FindByWatcherID(ctx, watcherID)
	if err != nil {
		return nil, err
	}
	if watcher == nil {
		return nil, notFoundf("watcher_id = %s is not exist", watcherID)
	}

	n, err := e.stores.Notifications.MarkRead(ctx, oid, watcherID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		exists, err := e.stores.Notifications.Exists(ctx, oid)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, notFoundf("notification_id = %s does not exist", notificationID)
		}
		return nil, conflictf("notification_id = %s already read or not addressed to watcher_id = %s", notificationID, watcherID)
	}

	if n.AuthorID != nil {
		author, err := e.stores.Watchers.FindByWatcherID(ctx, *n.AuthorID)
		if err != nil {
			return nil, err
		}
		if author != nil {
			pub := author.Public()
			n.Author = &pub
		}
	}

	if err := e.unread.Acknowledged(ctx, watcherID); err != nil {
		return nil, err
	}
	view := n.ViewFor(watcherID)
	return &view, nil
}

// Broadcast addresses a tenant notification to every registered watcher,
// independent of any group.
func (e *Engine) Broadcast(ctx context.Context, tenant, content string) (*models.Notification, error) {
	ids, err := e.stores.Watchers.ListWatcherIDs(ctx)
	if err != nil {
		return nil, err
	}
	n := models.Notification{
		Content:           content,
		WatcherNotiStatus: models.NewRecipients(ids),
		Audit:             models.NewAudit(tenant, e.now()),
	}
	n.ID, err = e.stores.Notifications.Insert(ctx, n)
	if err != nil {
		e.unread.Invalidate(ctx, ids)
		return nil, err
	}
	e.unread.Bump(ctx, ids)

	e.log.Info().Str("tenant", tenant).Int("recipients", len(ids)).Msg("broadcast notification created")
	return &n, nil
}

// UnreadCount serves the watcher's unread counter, establishing it on a miss.
func (e *Engine) UnreadCount(ctx context.Context, watcherID string) (int64, error) {
	return e.unread.Count(ctx, watcherID)
}
