package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/AnshRaj112/watchfeed-backend/internal/services/memstore"
)

const tenant = "sys-a"

type fakeUploader struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ []byte) (services.UploadedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return services.UploadedFile{}, f.err
	}
	return services.UploadedFile{UUID: "file-" + name, URL: "https://files.test/" + name}, nil
}

type harness struct {
	db       *memstore.DB
	stores   services.Stores
	mr       *miniredis.Miniredis
	cache    *services.RedisCounterCache
	unread   *services.UnreadCounter
	engine   *services.Engine
	uploader *fakeUploader
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := memstore.New()
	stores := db.Stores()
	cache := services.NewRedisCounterCache(rdb)
	unread := services.NewUnreadCounter(cache, stores.Notifications, time.Hour, zerolog.Nop())
	up := &fakeUploader{}
	return &harness{
		db:       db,
		stores:   stores,
		mr:       mr,
		cache:    cache,
		unread:   unread,
		engine:   services.NewEngine(stores, unread, up, zerolog.Nop()),
		uploader: up,
	}
}

func (h *harness) watcher(t *testing.T, id, username string) {
	t.Helper()
	require.NoError(t, h.stores.Watchers.Insert(context.Background(), models.Watcher{
		WatcherID: id,
		Username:  username,
		AvatarURL: "https://avatars.test/" + id,
		Audit:     models.NewAudit(tenant, time.Now().UTC()),
	}))
}

func (h *harness) group(t *testing.T, gid string, members ...string) {
	t.Helper()
	require.NoError(t, h.stores.Groups.Insert(context.Background(), models.GroupProfile{
		GroupProfileID: gid,
		WatcherIDs:     members,
		ActivityIDs:    []string{},
		Audit:          models.NewAudit(tenant, time.Now().UTC()),
	}))
}

// team seeds alice, bob and carol in group g1.
func (h *harness) team(t *testing.T) {
	t.Helper()
	h.watcher(t, "a", "alice")
	h.watcher(t, "b", "bob")
	h.watcher(t, "c", "carol")
	h.group(t, "g1", "a", "b", "c")
}

// warm establishes cache baselines through the read path.
func (h *harness) warm(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := h.unread.Count(context.Background(), id)
		require.NoError(t, err)
	}
}

func (h *harness) cached(t *testing.T, id string) (int64, bool) {
	t.Helper()
	n, ok, err := h.cache.Get(context.Background(), id)
	require.NoError(t, err)
	return n, ok
}

func (h *harness) post(t *testing.T, author, content string) *services.CreatedActivity {
	t.Helper()
	created, err := h.engine.CreateActivity(context.Background(), services.NewActivity{
		Tenant:         tenant,
		GroupProfileID: "g1",
		WatcherID:      author,
		Content:        content,
	})
	require.NoError(t, err)
	return created
}

// notificationFor returns the stored notification of activityID addressed to watcherID.
func (h *harness) notificationFor(t *testing.T, activityID, watcherID string) models.Notification {
	t.Helper()
	for _, n := range h.db.Notifications() {
		if n.ActivityID == nil || n.ActivityID.Hex() != activityID {
			continue
		}
		if _, ok := n.StatusOf(watcherID); ok {
			return n
		}
	}
	t.Fatalf("no notification of %s for %s", activityID, watcherID)
	return models.Notification{}
}
