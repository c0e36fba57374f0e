package services

import (
	"context"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationStore keeps notifications in the "notification" collection.
type MongoNotificationStore struct {
	col *mongo.Collection
}

func NewMongoNotificationStore(db *mongo.Database) *MongoNotificationStore {
	return &MongoNotificationStore{col: db.Collection(NotificationCollection)}
}

func (s *MongoNotificationStore) Insert(ctx context.Context, n models.Notification) (primitive.ObjectID, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.Author = nil
	if _, err := s.col.InsertOne(ctx, n); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert notification")
	}
	return n.ID, nil
}

func (s *MongoNotificationStore) InsertMany(ctx context.Context, ns []models.Notification) ([]primitive.ObjectID, error) {
	if len(ns) == 0 {
		return nil, nil
	}
	docs := make([]interface{}, 0, len(ns))
	ids := make([]primitive.ObjectID, 0, len(ns))
	for _, n := range ns {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		n.Author = nil
		docs = append(docs, n)
		ids = append(ids, n.ID)
	}
	if _, err := s.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return nil, errors.Wrap(err, "insert notifications")
	}
	return ids, nil
}

func unreadEntry(watcherID string) bson.M {
	return bson.M{"$elemMatch": bson.M{"watcher_id": watcherID, "status": false}}
}

// MarkRead relies on the positional operator so only the matched element is
// written; concurrent acknowledgements by other recipients do not interfere.
func (s *MongoNotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID, watcherID string) (*models.Notification, error) {
	filter := bson.M{"_id": id, "watcher_noti_status": unreadEntry(watcherID)}
	update := bson.M{"$set": bson.M{"watcher_noti_status.$.status": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "mark notification read")
	}
	return &n, nil
}

func (s *MongoNotificationStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count notification")
	}
	return n > 0, nil
}

func (s *MongoNotificationStore) TakeByActivity(ctx context.Context, activityID primitive.ObjectID) ([]models.Notification, error) {
	var out []models.Notification
	for {
		var n models.Notification
		err := s.col.FindOneAndDelete(ctx, bson.M{"activity_id": activityID}).Decode(&n)
		if err == mongo.ErrNoDocuments {
			return out, nil
		}
		if err != nil {
			return out, errors.Wrap(err, "take activity notification")
		}
		out = append(out, n)
	}
}

func (s *MongoNotificationStore) CountUnread(ctx context.Context, watcherID string) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"watcher_noti_status": unreadEntry(watcherID)})
	if err != nil {
		return 0, errors.Wrap(err, "count unread notifications")
	}
	return n, nil
}

func (s *MongoNotificationStore) PageForWatcher(ctx context.Context, watcherID string, q PageQuery) ([]models.Notification, error) {
	match := bson.M{"watcher_noti_status.watcher_id": watcherID}
	if q.Cursor != nil {
		match["_id"] = bson.M{"$lt": *q.Cursor}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: q.Limit}},
		{{Key: "$addFields", Value: bson.M{
			"watcher_noti_status": bson.M{"$filter": bson.M{
				"input": "$watcher_noti_status",
				"as":    "entry",
				"cond":  bson.M{"$eq": bson.A{"$$entry.watcher_id", watcherID}},
			}},
		}}},
	}
	pipeline = append(pipeline, authorLookup("watcher_created_activity")...)

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "page notifications")
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode notifications")
	}
	return out, nil
}
