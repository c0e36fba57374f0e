package services

import (
	"context"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoActivityStore keeps activities in the "activity" collection.
type MongoActivityStore struct {
	col *mongo.Collection
}

func NewMongoActivityStore(db *mongo.Database) *MongoActivityStore {
	return &MongoActivityStore{col: db.Collection(ActivityCollection)}
}

func (s *MongoActivityStore) Insert(ctx context.Context, a models.Activity) (primitive.ObjectID, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Author = nil
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "insert activity")
	}
	return a.ID, nil
}

func (s *MongoActivityStore) DeleteInGroup(ctx context.Context, id primitive.ObjectID, groupProfileID string) (*models.Activity, error) {
	var a models.Activity
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "group_profile_id": groupProfileID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete activity")
	}
	return &a, nil
}

func (s *MongoActivityStore) PageByGroup(ctx context.Context, groupProfileID string, q PageQuery) ([]models.Activity, error) {
	match := bson.M{"group_profile_id": groupProfileID}
	if q.Cursor != nil {
		match["_id"] = bson.M{"$lt": *q.Cursor}
	}
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: q.Limit}},
	}, authorLookup("watcher_id")...)

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "page activities")
	}
	defer cur.Close(ctx)

	var out []models.Activity
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode activities")
	}
	return out, nil
}

// authorLookup joins the watcher whose watcher_id equals localField into "author".
func authorLookup(localField string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         WatcherCollection,
			"localField":   localField,
			"foreignField": "watcher_id",
			"as":           "author_docs",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"author": bson.M{"$arrayElemAt": bson.A{"$author_docs", 0}},
		}}},
		{{Key: "$project", Value: bson.M{"author_docs": 0}}},
	}
}
