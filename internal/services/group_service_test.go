package services_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/watchfeed-backend/internal/services"
)

func TestGroupServiceCreate(t *testing.T) {
	h := newHarness(t)
	h.watcher(t, "a", "alice")
	h.watcher(t, "b", "bob")
	s := services.NewGroupService(h.stores, zerolog.Nop())
	ctx := context.Background()

	_, err := s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "g1", WatcherIDs: []string{"a", "b", "a"}})
	assert.ErrorIs(t, err, services.ErrValidation)

	g, err := s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "g1", WatcherIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.WatcherIDs)
	assert.Empty(t, g.ActivityIDs)
	assert.Equal(t, tenant, g.CreatedBy)

	_, err = s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "g1"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "g2", WatcherIDs: []string{"a", "ghost"}})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")

	_, err = s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestGroupServiceTenantOwnership(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	s := services.NewGroupService(h.stores, zerolog.Nop())

	_, err := s.Get(context.Background(), "other-system", "g1")
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = s.UpdateWatchers(context.Background(), "other-system", "g1", []string{"a"}, true)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGroupServiceUpdateWatchers(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	h.watcher(t, "d", "dave")
	s := services.NewGroupService(h.stores, zerolog.Nop())
	ctx := context.Background()

	_, err := s.UpdateWatchers(ctx, tenant, "g1", []string{"d", "a"}, false)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "watcher_id = a already exist")

	g, err := s.UpdateWatchers(ctx, tenant, "g1", []string{"d"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, g.WatcherIDs)

	g, err = s.UpdateWatchers(ctx, tenant, "g1", []string{"b", "c"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, g.WatcherIDs)

	_, err = s.UpdateWatchers(ctx, tenant, "g1", []string{"b"}, true)
	require.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "watcher_id = b not exist")

	_, err = s.UpdateWatchers(ctx, tenant, "g1", []string{"d", "d"}, true)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = s.UpdateWatchers(ctx, tenant, "g1", []string{"ghost"}, false)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = s.UpdateWatchers(ctx, tenant, "g1", nil, false)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = s.UpdateWatchers(ctx, tenant, "nope", []string{"a"}, false)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGroupServiceRejectsBlankWatcherID(t *testing.T) {
	h := newHarness(t)
	h.team(t)
	s := services.NewGroupService(h.stores, zerolog.Nop())
	ctx := context.Background()

	for _, ids := range [][]string{{""}, {"a", " "}, {"", ""}} {
		_, err := s.UpdateWatchers(ctx, tenant, "g1", ids, false)
		require.ErrorIs(t, err, services.ErrValidation)
		assert.Contains(t, err.Error(), "watcher_id must not be empty")
		assert.NotContains(t, err.Error(), "same value")
	}

	_, err := s.Create(ctx, tenant, services.GroupInput{GroupProfileID: "g2", WatcherIDs: []string{"a", ""}})
	require.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "watcher_id must not be empty")
}
