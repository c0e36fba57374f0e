package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/rs/zerolog"
)

// GroupInput creates a group profile.
type GroupInput struct {
	GroupProfileID string   `json:"group_profile_id" validate:"required"`
	WatcherIDs     []string `json:"watcher_ids"`
}

// GroupService manages group profiles and their membership. Groups are owned
// by the tenant that created them.
type GroupService struct {
	stores Stores
	log    zerolog.Logger
	now    func() time.Time
}

func NewGroupService(stores Stores, log zerolog.Logger) *GroupService {
	return &GroupService{stores: stores, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// absent lists the ids without a matching watcher, in request order.
func absent(ids []string, found []models.Watcher) []string {
	known := make(map[string]bool, len(found))
	for _, w := range found {
		known[w.WatcherID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// checkWatchers fails with NotFound naming every unknown watcher id.
func (s *GroupService) checkWatchers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.stores.Watchers.FindByWatcherIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := absent(ids, found); len(missing) > 0 {
		return notFoundf("watcher_ids %s are not exist", strings.Join(missing, ", "))
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// distinct rejects blank ids and requests that name the same watcher twice.
func distinct(ids []string) ([]string, error) {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, validationf("watcher_id must not be empty")
		}
	}
	out := dedupe(ids)
	if len(out) != len(ids) {
		return nil, validationf("some watcher_id have same value")
	}
	return out, nil
}

// Create stores a new group profile with its initial members.
func (s *GroupService) Create(ctx context.Context, tenant string, in GroupInput) (*models.GroupProfile, error) {
	if strings.TrimSpace(in.GroupProfileID) == "" {
		return nil, validationf("group_profile_id is required")
	}
	ids, err := distinct(in.WatcherIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkWatchers(ctx, ids); err != nil {
		return nil, err
	}
	g := models.GroupProfile{
		GroupProfileID: in.GroupProfileID,
		WatcherIDs:     ids,
		ActivityIDs:    []string{},
		Audit:          models.NewAudit(tenant, s.now()),
	}
	if err := s.stores.Groups.Insert(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info().Str("tenant", tenant).Str("group_profile_id", g.GroupProfileID).Int("watchers", len(ids)).Msg("group profile created")
	return s.stores.Groups.Find(ctx, g.GroupProfileID, tenant)
}

func (s *GroupService) Get(ctx context.Context, tenant, groupProfileID string) (*models.GroupProfile, error) {
	g, err := s.stores.Groups.Find(ctx, groupProfileID, tenant)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, notFoundf("group_profile_id = %s does not exist", groupProfileID)
	}
	return g, nil
}

// UpdateWatchers adds, or with remove set removes, members. Adding a current
// member or removing a non-member is a Conflict naming them.
func (s *GroupService) UpdateWatchers(ctx context.Context, tenant, groupProfileID string, watcherIDs []string, remove bool) (*models.GroupProfile, error) {
	if len(watcherIDs) == 0 {
		return nil, validationf("watcher_ids is empty")
	}
	ids, err := distinct(watcherIDs)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, tenant, groupProfileID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWatchers(ctx, ids); err != nil {
		return nil, err
	}

	var clash []string
	for _, id := range ids {
		if current.HasMember(id) != remove {
			clash = append(clash, id)
		}
	}
	if len(clash) > 0 {
		if remove {
			return nil, conflictf("watcher_id = %s not exist in group_profile_id = %s", strings.Join(clash, ", "), groupProfileID)
		}
		return nil, conflictf("watcher_id = %s already exist in group_profile_id = %s", strings.Join(clash, ", "), groupProfileID)
	}

	var g *models.GroupProfile
	if remove {
		g, err = s.stores.Groups.RemoveMembers(ctx, groupProfileID, ids, s.now())
	} else {
		g, err = s.stores.Groups.AddMembers(ctx, groupProfileID, ids, s.now())
	}
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, notFoundf("group_profile_id = %s does not exist", groupProfileID)
	}
	s.log.Info().Str("group_profile_id", groupProfileID).Bool("remove", remove).Int("watchers", len(ids)).Msg("group profile members updated")
	return g, nil
}
