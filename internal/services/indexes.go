package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the unique keys and the paging indexes.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		WatcherCollection: {
			{Keys: bson.D{{Key: "watcher_id", Value: 1}}, Options: options.Index().SetName("uniq_watcher_id").SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("uniq_username").SetUnique(true)},
		},
		GroupProfileCollection: {
			{Keys: bson.D{{Key: "group_profile_id", Value: 1}}, Options: options.Index().SetName("uniq_group_profile_id").SetUnique(true)},
			{Keys: bson.D{{Key: "watcher_ids", Value: 1}}, Options: options.Index().SetName("idx_watcher_ids")},
		},
		ActivityCollection: {
			// activity feed walks _id descending inside one group
			{Keys: bson.D{{Key: "group_profile_id", Value: 1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_group_id_desc")},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "watcher_noti_status.watcher_id", Value: 1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_recipient_id_desc")},
			{Keys: bson.D{{Key: "activity_id", Value: 1}}, Options: options.Index().SetName("idx_activity_id")},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}
