package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Targeting says who an activity is addressed to: every member of the group
// (Broadcast) or an explicit set of member watcher ids.
type Targeting struct {
	Broadcast  bool     `bson:"tag_all" json:"tag_all"`
	WatcherIDs []string `bson:"tag_users" json:"tag_users"`
}

// BroadcastTargeting addresses all current members.
func BroadcastTargeting() Targeting {
	return Targeting{Broadcast: true, WatcherIDs: []string{}}
}

// ExplicitTargeting addresses only ids.
func ExplicitTargeting(ids []string) Targeting {
	if ids == nil {
		ids = []string{}
	}
	return Targeting{WatcherIDs: ids}
}

// Includes reports whether watcherID is explicitly tagged. Always false for broadcasts.
func (t Targeting) Includes(watcherID string) bool {
	if t.Broadcast {
		return false
	}
	for _, id := range t.WatcherIDs {
		if id == watcherID {
			return true
		}
	}
	return false
}

// FileRef is an uploaded attachment. Either all fields are set or the
// reference is absent.
type FileRef struct {
	UUID string `bson:"file_uuid" json:"file_uuid"`
	URL  string `bson:"file_url" json:"file_url"`
	Name string `bson:"file_name" json:"file_name"`
}

// Activity is a single post inside a group profile.
type Activity struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupProfileID string             `bson:"group_profile_id" json:"group_profile_id"`
	Content        string             `bson:"content" json:"content"`
	File           *FileRef           `bson:"file,omitempty" json:"file,omitempty"`
	Targeting      Targeting          `bson:"targeting" json:"targeting"`
	WatcherID      string             `bson:"watcher_id" json:"watcher_id"`
	Audit          `bson:",inline"`

	// Author is filled by the feed lookup and never stored.
	Author *WatcherPublic `bson:"author,omitempty" json:"author,omitempty"`
}
