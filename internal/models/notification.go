package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WatcherStatus is one recipient entry. Status false means unread.
type WatcherStatus struct {
	WatcherID string `bson:"watcher_id" json:"watcher_id"`
	Status    bool   `bson:"status" json:"status"`
}

// Notification is addressed to a fixed set of recipients. The recipient set is
// decided at insert time; only Status flips afterwards.
type Notification struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Content           string              `bson:"content" json:"content"`
	WatcherNotiStatus []WatcherStatus     `bson:"watcher_noti_status" json:"watcher_noti_status"`
	ActivityID        *primitive.ObjectID `bson:"activity_id" json:"activity_id"`
	AuthorID          *string             `bson:"watcher_created_activity" json:"watcher_created_activity"`
	Audit             `bson:",inline"`

	Author *WatcherPublic `bson:"author,omitempty" json:"author,omitempty"`
}

// NewRecipients builds an all-unread status list.
func NewRecipients(watcherIDs []string) []WatcherStatus {
	out := make([]WatcherStatus, 0, len(watcherIDs))
	for _, id := range watcherIDs {
		out = append(out, WatcherStatus{WatcherID: id})
	}
	return out
}

// Recipients lists every addressed watcher.
func (n Notification) Recipients() []string {
	out := make([]string, 0, len(n.WatcherNotiStatus))
	for _, s := range n.WatcherNotiStatus {
		out = append(out, s.WatcherID)
	}
	return out
}

// UnreadRecipients lists watchers whose entry is still unread.
func (n Notification) UnreadRecipients() []string {
	var out []string
	for _, s := range n.WatcherNotiStatus {
		if !s.Status {
			out = append(out, s.WatcherID)
		}
	}
	return out
}

// StatusOf returns the entry for watcherID, if addressed.
func (n Notification) StatusOf(watcherID string) (WatcherStatus, bool) {
	for _, s := range n.WatcherNotiStatus {
		if s.WatcherID == watcherID {
			return s, true
		}
	}
	return WatcherStatus{}, false
}

// NotificationView is a notification as seen by one recipient.
type NotificationView struct {
	ID         primitive.ObjectID  `json:"id"`
	Content    string              `json:"content"`
	Status     *WatcherStatus      `json:"watcher_noti_status"`
	ActivityID *primitive.ObjectID `json:"activity_id"`
	Author     *WatcherPublic      `json:"watcher_created_activity_document"`
	Audit
}

// ViewFor projects n onto watcherID's own status entry.
func (n Notification) ViewFor(watcherID string) NotificationView {
	v := NotificationView{
		ID:         n.ID,
		Content:    n.Content,
		ActivityID: n.ActivityID,
		Author:     n.Author,
		Audit:      n.Audit,
	}
	if s, ok := n.StatusOf(watcherID); ok {
		v.Status = &s
	}
	return v
}
