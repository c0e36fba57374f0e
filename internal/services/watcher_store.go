package services

import (
	"context"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWatcherStore keeps watchers in the "watcher" collection.
type MongoWatcherStore struct {
	col *mongo.Collection
}

func NewMongoWatcherStore(db *mongo.Database) *MongoWatcherStore {
	return &MongoWatcherStore{col: db.Collection(WatcherCollection)}
}

func (s *MongoWatcherStore) Insert(ctx context.Context, w models.Watcher) error {
	if _, err := s.col.InsertOne(ctx, w); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictf("watcher %s is already exist", w.WatcherID)
		}
		return errors.Wrap(err, "insert watcher")
	}
	return nil
}

func (s *MongoWatcherStore) InsertMany(ctx context.Context, ws []models.Watcher) error {
	if len(ws) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(ws))
	for _, w := range ws {
		docs = append(docs, w)
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictf("some watcher is already exist")
		}
		return errors.Wrap(err, "insert watchers")
	}
	return nil
}

func (s *MongoWatcherStore) FindByWatcherID(ctx context.Context, watcherID string) (*models.Watcher, error) {
	var w models.Watcher
	err := s.col.FindOne(ctx, bson.M{"watcher_id": watcherID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find watcher")
	}
	return &w, nil
}

func (s *MongoWatcherStore) FindByWatcherIDs(ctx context.Context, watcherIDs []string) ([]models.Watcher, error) {
	return s.find(ctx, bson.M{"watcher_id": bson.M{"$in": watcherIDs}}, nil)
}

func (s *MongoWatcherStore) FindByUsernames(ctx context.Context, usernames []string) ([]models.Watcher, error) {
	return s.find(ctx, bson.M{"username": bson.M{"$in": usernames}}, nil)
}

func (s *MongoWatcherStore) FindClashing(ctx context.Context, watcherIDs, usernames []string) ([]models.Watcher, error) {
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"watcher_id": bson.M{"$in": watcherIDs}},
		bson.M{"username": bson.M{"$in": usernames}},
	}}, nil)
}

func (s *MongoWatcherStore) ListWatcherIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"watcher_id": 1, "_id": 0})
	ws, err := s.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ws))
	for _, w := range ws {
		ids = append(ids, w.WatcherID)
	}
	return ids, nil
}

func (s *MongoWatcherStore) Delete(ctx context.Context, watcherID string) (*models.Watcher, error) {
	var w models.Watcher
	err := s.col.FindOneAndDelete(ctx, bson.M{"watcher_id": watcherID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete watcher")
	}
	return &w, nil
}

func (s *MongoWatcherStore) DeleteMany(ctx context.Context, watcherIDs []string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"watcher_id": bson.M{"$in": watcherIDs}})
	if err != nil {
		return 0, errors.Wrap(err, "delete watchers")
	}
	return res.DeletedCount, nil
}

func (s *MongoWatcherStore) PageByWatcherIDs(ctx context.Context, watcherIDs []string, q PageQuery) ([]models.Watcher, error) {
	filter := bson.M{"watcher_id": bson.M{"$in": watcherIDs}}
	if q.Cursor != nil {
		filter["_id"] = bson.M{"$gt": *q.Cursor}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(q.Limit)
	return s.find(ctx, filter, opts)
}

func (s *MongoWatcherStore) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Watcher, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.col.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "find watchers")
	}
	defer cur.Close(ctx)

	var ws []models.Watcher
	if err := cur.All(ctx, &ws); err != nil {
		return nil, errors.Wrap(err, "decode watchers")
	}
	return ws, nil
}
