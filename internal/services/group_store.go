package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGroupStore keeps group profiles in the "group_profile" collection.
type MongoGroupStore struct {
	col *mongo.Collection
}

func NewMongoGroupStore(db *mongo.Database) *MongoGroupStore {
	return &MongoGroupStore{col: db.Collection(GroupProfileCollection)}
}

func (s *MongoGroupStore) Insert(ctx context.Context, g models.GroupProfile) error {
	if _, err := s.col.InsertOne(ctx, g); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictf("group_profile_id = %s is exist", g.GroupProfileID)
		}
		return errors.Wrap(err, "insert group profile")
	}
	return nil
}

func (s *MongoGroupStore) Find(ctx context.Context, groupProfileID, tenant string) (*models.GroupProfile, error) {
	filter := bson.M{"group_profile_id": groupProfileID}
	if tenant != "" {
		filter["created_by"] = tenant
	}
	var g models.GroupProfile
	err := s.col.FindOne(ctx, filter).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find group profile")
	}
	return &g, nil
}

func (s *MongoGroupStore) AddMembers(ctx context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error) {
	return s.updateMembers(ctx, groupProfileID, bson.M{
		"$addToSet": bson.M{"watcher_ids": bson.M{"$each": watcherIDs}},
		"$set":      bson.M{"updated_at": at},
	})
}

func (s *MongoGroupStore) RemoveMembers(ctx context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error) {
	return s.updateMembers(ctx, groupProfileID, bson.M{
		"$pull": bson.M{"watcher_ids": bson.M{"$in": watcherIDs}},
		"$set":  bson.M{"updated_at": at},
	})
}

func (s *MongoGroupStore) updateMembers(ctx context.Context, groupProfileID string, update bson.M) (*models.GroupProfile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g models.GroupProfile
	err := s.col.FindOneAndUpdate(ctx, bson.M{"group_profile_id": groupProfileID}, update, opts).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "update group members")
	}
	return &g, nil
}

// PushActivity uses $addToSet so a retried index update never duplicates.
func (s *MongoGroupStore) PushActivity(ctx context.Context, groupProfileID, activityID string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"group_profile_id": groupProfileID},
		bson.M{"$addToSet": bson.M{"activity_ids": activityID}},
	)
	return errors.Wrap(err, "push activity id")
}

func (s *MongoGroupStore) PullActivity(ctx context.Context, groupProfileID, activityID string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"group_profile_id": groupProfileID},
		bson.M{"$pull": bson.M{"activity_ids": activityID}},
	)
	return errors.Wrap(err, "pull activity id")
}

func (s *MongoGroupStore) MembersOfAnyGroup(ctx context.Context, watcherIDs []string) ([]string, error) {
	values, err := s.col.Distinct(ctx, "watcher_ids", bson.M{"watcher_ids": bson.M{"$in": watcherIDs}})
	if err != nil {
		return nil, errors.Wrap(err, "distinct group members")
	}
	present := make(map[string]bool, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			present[id] = true
		}
	}
	var out []string
	for _, id := range watcherIDs {
		if present[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
