package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Watcher is a participant identity. WatcherID and Username are both unique.
type Watcher struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WatcherID string             `bson:"watcher_id" json:"watcher_id"`
	Username  string             `bson:"username" json:"username"`
	AvatarURL string             `bson:"avatar_url" json:"avatar_url"`
	Audit     `bson:",inline"`
}

// WatcherPublic is the identity joined onto feed items.
type WatcherPublic struct {
	WatcherID string `bson:"watcher_id" json:"watcher_id"`
	Username  string `bson:"username" json:"username"`
	AvatarURL string `bson:"avatar_url" json:"avatar_url"`
}

// Public strips audit fields.
func (w Watcher) Public() WatcherPublic {
	return WatcherPublic{WatcherID: w.WatcherID, Username: w.Username, AvatarURL: w.AvatarURL}
}
