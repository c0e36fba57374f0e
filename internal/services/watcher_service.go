package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/pkg/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// WatcherInput registers one watcher.
type WatcherInput struct {
	WatcherID string `json:"watcher_id" validate:"required"`
	Username  string `json:"username" validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"required"`
}

// IssuedToken is a bearer token for one watcher.
type IssuedToken struct {
	WatcherID string    `json:"watcher_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WatcherService manages watcher identities.
type WatcherService struct {
	stores Stores
	tokens *Tokens
	limit  int64
	log    zerolog.Logger
	now    func() time.Time
}

func NewWatcherService(stores Stores, tokens *Tokens, pageLimit int, log zerolog.Logger) *WatcherService {
	return &WatcherService{
		stores: stores,
		tokens: tokens,
		limit:  clampLimit(int64(pageLimit), DefaultPageLimit),
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validateWatcher(in WatcherInput) error {
	if strings.TrimSpace(in.WatcherID) == "" {
		return validationf("watcher_id is required")
	}
	if err := utils.ValidateUsername(in.Username); err != nil {
		return validationf("%s", err.Error())
	}
	return nil
}

func (s *WatcherService) build(tenant string, in WatcherInput) models.Watcher {
	return models.Watcher{
		WatcherID: in.WatcherID,
		Username:  in.Username,
		AvatarURL: in.AvatarURL,
		Audit:     models.NewAudit(tenant, s.now()),
	}
}

// Create registers one watcher. Both watcher_id and username must be unused.
func (s *WatcherService) Create(ctx context.Context, tenant string, in WatcherInput) (*models.Watcher, error) {
	if err := validateWatcher(in); err != nil {
		return nil, err
	}
	clash, err := s.stores.Watchers.FindClashing(ctx, []string{in.WatcherID}, []string{in.Username})
	if err != nil {
		return nil, err
	}
	if len(clash) > 0 {
		return nil, conflictf("watcher_id = %s or username = %s is already exist", in.WatcherID, in.Username)
	}
	w := s.build(tenant, in)
	if err := s.stores.Watchers.Insert(ctx, w); err != nil {
		return nil, err
	}
	s.log.Info().Str("tenant", tenant).Str("watcher_id", w.WatcherID).Msg("watcher created")
	return s.stores.Watchers.FindByWatcherID(ctx, w.WatcherID)
}

// CreateMany registers a batch all-or-nothing against existing records and
// against duplicates inside the batch.
func (s *WatcherService) CreateMany(ctx context.Context, tenant string, in []WatcherInput) ([]models.Watcher, error) {
	if len(in) == 0 {
		return nil, validationf("list of watcher is empty")
	}
	ids := make([]string, 0, len(in))
	names := make([]string, 0, len(in))
	seenID := map[string]bool{}
	seenName := map[string]bool{}
	for _, w := range in {
		if err := validateWatcher(w); err != nil {
			return nil, err
		}
		if seenID[w.WatcherID] || seenName[w.Username] {
			return nil, validationf("watcher_id = %s or username = %s is duplicated in request", w.WatcherID, w.Username)
		}
		seenID[w.WatcherID] = true
		seenName[w.Username] = true
		ids = append(ids, w.WatcherID)
		names = append(names, w.Username)
	}

	clash, err := s.stores.Watchers.FindClashing(ctx, ids, names)
	if err != nil {
		return nil, err
	}
	if len(clash) > 0 {
		existing := make([]string, 0, len(clash))
		for _, w := range clash {
			existing = append(existing, w.WatcherID)
		}
		return nil, conflictf("watchers %s are already exist", strings.Join(existing, ", "))
	}

	docs := make([]models.Watcher, 0, len(in))
	for _, w := range in {
		docs = append(docs, s.build(tenant, w))
	}
	if err := s.stores.Watchers.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	s.log.Info().Str("tenant", tenant).Int("count", len(docs)).Msg("watchers created")
	return s.stores.Watchers.FindByWatcherIDs(ctx, ids)
}

func (s *WatcherService) Get(ctx context.Context, watcherID string) (*models.Watcher, error) {
	w, err := s.stores.Watchers.FindByWatcherID(ctx, watcherID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, notFoundf("watcher_id = %s is not exist", watcherID)
	}
	return w, nil
}

// Delete removes a watcher that belongs to no group.
func (s *WatcherService) Delete(ctx context.Context, watcherID string) (*models.Watcher, error) {
	members, err := s.stores.Groups.MembersOfAnyGroup(ctx, []string{watcherID})
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		return nil, conflictf("watcher_id = %s still belongs to a group profile", watcherID)
	}
	w, err := s.stores.Watchers.Delete(ctx, watcherID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, notFoundf("watcher_id = %s is not exist", watcherID)
	}
	s.log.Info().Str("watcher_id", watcherID).Msg("watcher deleted")
	return w, nil
}

// DeleteMany removes a batch all-or-nothing: every id must exist and none may
// be a group member.
func (s *WatcherService) DeleteMany(ctx context.Context, watcherIDs []string) (int64, error) {
	if len(watcherIDs) == 0 {
		return 0, validationf("list_watcher_id is empty")
	}
	watcherIDs = dedupe(watcherIDs)
	found, err := s.stores.Watchers.FindByWatcherIDs(ctx, watcherIDs)
	if err != nil {
		return 0, err
	}
	if missing := absent(watcherIDs, found); len(missing) > 0 {
		return 0, notFoundf("watcher_ids = %s are not exist", strings.Join(missing, ", "))
	}
	members, err := s.stores.Groups.MembersOfAnyGroup(ctx, watcherIDs)
	if err != nil {
		return 0, err
	}
	if len(members) > 0 {
		return 0, conflictf("watchers %s still belong to a group profile", strings.Join(members, ", "))
	}
	n, err := s.stores.Watchers.DeleteMany(ctx, watcherIDs)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("count", n).Msg("watchers deleted")
	return n, nil
}

// IssueToken signs a bearer token for a registered watcher.
func (s *WatcherService) IssueToken(ctx context.Context, watcherID string) (*IssuedToken, error) {
	if _, err := s.Get(ctx, watcherID); err != nil {
		return nil, err
	}
	token, exp, err := s.tokens.Issue(watcherID)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{WatcherID: watcherID, Token: token, ExpiresAt: exp}, nil
}

// VerifyWatcher resolves a bearer token to a watcher that is still
// registered. Tokens of deleted watchers are forbidden.
func (s *WatcherService) VerifyWatcher(ctx context.Context, token string) (string, error) {
	watcherID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	w, err := s.stores.Watchers.FindByWatcherID(ctx, watcherID)
	if err != nil {
		return "", err
	}
	if w == nil {
		return "", errors.Wrapf(ErrForbidden, "watcher_id = %s is not exist", watcherID)
	}
	return watcherID, nil
}

// MemberPage is one page of a group's watchers in ascending _id order.
type MemberPage struct {
	Watchers   []models.Watcher `json:"watchers"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

// Members pages the watchers of a group.
func (s *WatcherService) Members(ctx context.Context, tenant, groupProfileID, cursor string, limit int) (*MemberPage, error) {
	after, err := parseCursor("last_watcher_id", cursor)
	if err != nil {
		return nil, err
	}
	group, err := s.stores.Groups.Find(ctx, groupProfileID, tenant)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, notFoundf("group_profile_id = %s does not exist", groupProfileID)
	}
	n := clampLimit(int64(limit), s.limit)
	ws, err := s.stores.Watchers.PageByWatcherIDs(ctx, group.WatcherIDs, PageQuery{Cursor: after, Limit: n + 1})
	if err != nil {
		return nil, err
	}
	page := &MemberPage{Watchers: ws}
	if int64(len(ws)) > n {
		page.HasMore = true
		page.Watchers = ws[:n]
		page.NextCursor = page.Watchers[n-1].ID.Hex()
	}
	return page, nil
}
