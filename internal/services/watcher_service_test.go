package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/watchfeed-backend/internal/services"
)

func (h *harness) watcherService() *services.WatcherService {
	return services.NewWatcherService(h.stores, services.NewTokens("secret", time.Hour), 2, zerolog.Nop())
}

func TestWatcherServiceCreate(t *testing.T) {
	h := newHarness(t)
	s := h.watcherService()
	ctx := context.Background()

	w, err := s.Create(ctx, tenant, services.WatcherInput{WatcherID: "w1", Username: "alice", AvatarURL: "https://a.test/1"})
	require.NoError(t, err)
	assert.False(t, w.ID.IsZero())
	assert.Equal(t, tenant, w.CreatedBy)

	_, err = s.Create(ctx, tenant, services.WatcherInput{WatcherID: "w1", Username: "other", AvatarURL: "x"})
	assert.ErrorIs(t, err, services.ErrConflict)
	_, err = s.Create(ctx, tenant, services.WatcherInput{WatcherID: "w2", Username: "alice", AvatarURL: "x"})
	assert.ErrorIs(t, err, services.ErrConflict)

	for _, bad := range []string{"", "has space", "at@sign", "all", "ALL"} {
		_, err = s.Create(ctx, tenant, services.WatcherInput{WatcherID: "w9", Username: bad, AvatarURL: "x"})
		assert.ErrorIs(t, err, services.ErrValidation, bad)
	}
	_, err = s.Create(ctx, tenant, services.WatcherInput{WatcherID: " ", Username: "zed", AvatarURL: "x"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestWatcherServiceCreateMany(t *testing.T) {
	h := newHarness(t)
	h.watcher(t, "a", "alice")
	s := h.watcherService()
	ctx := context.Background()

	ws, err := s.CreateMany(ctx, tenant, []services.WatcherInput{
		{WatcherID: "b", Username: "bob", AvatarURL: "x"},
		{WatcherID: "c", Username: "carol", AvatarURL: "x"},
	})
	require.NoError(t, err)
	assert.Len(t, ws, 2)

	_, err = s.CreateMany(ctx, tenant, []services.WatcherInput{
		{WatcherID: "d", Username: "dave", AvatarURL: "x"},
		{WatcherID: "a", Username: "alice2", AvatarURL: "x"},
	})
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "a")
	// nothing from a rejected batch is stored
	got, err := h.stores.Watchers.FindByWatcherID(ctx, "d")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.CreateMany(ctx, tenant, []services.WatcherInput{
		{WatcherID: "e", Username: "eve", AvatarURL: "x"},
		{WatcherID: "e", Username: "eve2", AvatarURL: "x"},
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = s.CreateMany(ctx, tenant, nil)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestWatcherServiceDelete(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	h.watcher(t, "d", "dave")
	h.watcher(t, "e", "eve")
	s := h.watcherService()
	ctx := context.Background()

	_, err := s.Delete(ctx, "a")
	assert.ErrorIs(t, err, services.ErrConflict)

	w, err := s.Delete(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "dave", w.Username)
	_, err = s.Get(ctx, "d")
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = s.Delete(ctx, "d")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = s.DeleteMany(ctx, []string{"e", "b"})
	assert.ErrorIs(t, err, services.ErrConflict)
	_, err = s.DeleteMany(ctx, []string{"e", "ghost"})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")
	// a rejected batch deletes nothing
	_, err = s.Get(ctx, "e")
	require.NoError(t, err)

	n, err := s.DeleteMany(ctx, []string{"e", "e"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWatcherServiceIssueToken(t *testing.T) {
	h := newHarness(t)
	h.watcher(t, "a", "alice")
	tokens := services.NewTokens("secret", time.Hour)
	s := services.NewWatcherService(h.stores, tokens, 20, zerolog.Nop())

	issued, err := s.IssueToken(context.Background(), "a")
	require.NoError(t, err)
	id, err := tokens.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	_, err = s.IssueToken(context.Background(), "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestWatcherServiceVerifyWatcher(t *testing.T) {
	h := newHarness(t)
	h.watcher(t, "a", "alice")
	tokens := services.NewTokens("secret", time.Hour)
	s := services.NewWatcherService(h.stores, tokens, 20, zerolog.Nop())
	ctx := context.Background()
	issued, err := s.IssueToken(ctx, "a")
	require.NoError(t, err)

	id, err := s.VerifyWatcher(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	_, err = s.VerifyWatcher(ctx, "garbage")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = s.Delete(ctx, "a")
	require.NoError(t, err)
	_, err = s.VerifyWatcher(ctx, issued.Token)
	require.ErrorIs(t, err, services.ErrForbidden)
	assert.Contains(t, err.Error(), "watcher_id = a is not exist")

	boom := errors.New("store down")
	h.db.FailOn("watchers.FindByWatcherID", boom)
	_, err = s.VerifyWatcher(ctx, issued.Token)
	assert.ErrorIs(t, err, boom)
}

func TestWatcherServiceMembersPages(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	h.watcher(t, "x", "outsider")
	s := h.watcherService()
	ctx := context.Background()

	page, err := s.Members(ctx, tenant, "g1", "", 0)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	require.Len(t, page.Watchers, 2)
	assert.Equal(t, "a", page.Watchers[0].WatcherID)
	assert.Equal(t, "b", page.Watchers[1].WatcherID)

	page, err = s.Members(ctx, tenant, "g1", page.NextCursor, 0)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Watchers, 1)
	assert.Equal(t, "c", page.Watchers[0].WatcherID)

	_, err = s.Members(ctx, "other-system", "g1", "", 0)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = s.Members(ctx, tenant, "g1", "nope", 0)
	assert.ErrorIs(t, err, services.ErrValidation)
}
