package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupProfile is a named set of watchers sharing an activity feed.
// ActivityIDs is a denormalized index of activity ids (hex) and can be rebuilt
// from the activities collection.
type GroupProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupProfileID string             `bson:"group_profile_id" json:"group_profile_id"`
	WatcherIDs     []string           `bson:"watcher_ids" json:"watcher_ids"`
	ActivityIDs    []string           `bson:"activity_ids" json:"activity_ids"`
	Audit          `bson:",inline"`
}

// HasMember reports whether watcherID is in the group.
func (g GroupProfile) HasMember(watcherID string) bool {
	for _, id := range g.WatcherIDs {
		if id == watcherID {
			return true
		}
	}
	return false
}
