// Package memstore is an in-process implementation of the service stores.
// It mirrors the Mongo stores' filter and ordering semantics so engine and
// handler tests run without a database.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds every collection behind one lock.
type DB struct {
	mu            sync.Mutex
	watchers      []models.Watcher
	groups        []models.GroupProfile
	activities    []models.Activity
	notifications []models.Notification
	faults        map[string]error
}

func New() *DB {
	return &DB{faults: map[string]error{}}
}

// Stores returns the four stores backed by db.
func (db *DB) Stores() services.Stores {
	return services.Stores{
		Watchers:      watcherStore{db},
		Groups:        groupStore{db},
		Activities:    activityStore{db},
		Notifications: notificationStore{db},
	}
}

// FailOn makes the named operation (e.g. "notifications.InsertMany") return
// err until cleared with a nil err.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.faults, op)
		return
	}
	db.faults[op] = err
}

func (db *DB) fault(op string) error {
	return db.faults[op]
}

// Notifications returns a copy of every stored notification, oldest first.
func (db *DB) Notifications() []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]models.Notification, 0, len(db.notifications))
	for _, n := range db.notifications {
		out = append(out, copyNotification(n))
	}
	return out
}

// Activities returns a copy of every stored activity, oldest first.
func (db *DB) Activities() []models.Activity {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]models.Activity(nil), db.activities...)
}

func less(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func copyGroup(g models.GroupProfile) models.GroupProfile {
	g.WatcherIDs = append([]string{}, g.WatcherIDs...)
	g.ActivityIDs = append([]string{}, g.ActivityIDs...)
	return g
}

func copyNotification(n models.Notification) models.Notification {
	n.WatcherNotiStatus = append([]models.WatcherStatus{}, n.WatcherNotiStatus...)
	return n
}

func (db *DB) author(watcherID string) *models.WatcherPublic {
	for _, w := range db.watchers {
		if w.WatcherID == watcherID {
			pub := w.Public()
			return &pub
		}
	}
	return nil
}

type watcherStore struct{ db *DB }

func (s watcherStore) clashes(ids, names []string) []models.Watcher {
	idSet, nameSet := set(ids), set(names)
	var out []models.Watcher
	for _, w := range s.db.watchers {
		if idSet[w.WatcherID] || nameSet[w.Username] {
			out = append(out, w)
		}
	}
	return out
}

func (s watcherStore) Insert(_ context.Context, w models.Watcher) error {
	return s.InsertMany(context.Background(), []models.Watcher{w})
}

func (s watcherStore) InsertMany(_ context.Context, ws []models.Watcher) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault("watchers.InsertMany"); err != nil {
		return err
	}
	var ids, names []string
	for _, w := range ws {
		ids = append(ids, w.WatcherID)
		names = append(names, w.Username)
	}
	if len(s.clashes(ids, names)) > 0 {
		return errors.Wrap(services.ErrConflict, "duplicate key")
	}
	for _, w := range ws {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		s.db.watchers = append(s.db.watchers, w)
	}
	return nil
}

func (s watcherStore) FindByWatcherID(_ context.Context, watcherID string) (*models.Watcher, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault("watchers.FindByWatcherID"); err != nil {
		return nil, err
	}
	for _, w := range s.db.watchers {
		if w.WatcherID == watcherID {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (s watcherStore) filter(keep func(models.Watcher) bool) []models.Watcher {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Watcher
	for _, w := range s.db.watchers {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func (s watcherStore) FindByWatcherIDs(_ context.Context, watcherIDs []string) ([]models.Watcher, error) {
	in := set(watcherIDs)
	return s.filter(func(w models.Watcher) bool { return in[w.WatcherID] }), nil
}

func (s watcherStore) FindByUsernames(_ context.Context, usernames []string) ([]models.Watcher, error) {
	in := set(usernames)
	return s.filter(func(w models.Watcher) bool { return in[w.Username] }), nil
}

func (s watcherStore) FindClashing(_ context.Context, watcherIDs, usernames []string) ([]models.Watcher, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.clashes(watcherIDs, usernames), nil
}

func (s watcherStore) ListWatcherIDs(_ context.Context) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := make([]string, 0, len(s.db.watchers))
	for _, w := range s.db.watchers {
		ids = append(ids, w.WatcherID)
	}
	return ids, nil
}

func (s watcherStore) Delete(_ context.Context, watcherID string) (*models.Watcher, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, w := range s.db.watchers {
		if w.WatcherID == watcherID {
			s.db.watchers = append(s.db.watchers[:i], s.db.watchers[i+1:]...)
			return &w, nil
		}
	}
	return nil, nil
}

func (s watcherStore) DeleteMany(_ context.Context, watcherIDs []string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	in := set(watcherIDs)
	kept := s.db.watchers[:0]
	var n int64
	for _, w := range s.db.watchers {
		if in[w.WatcherID] {
			n++
			continue
		}
		kept = append(kept, w)
	}
	s.db.watchers = kept
	return n, nil
}

func (s watcherStore) PageByWatcherIDs(_ context.Context, watcherIDs []string, q services.PageQuery) ([]models.Watcher, error) {
	in := set(watcherIDs)
	ws := s.filter(func(w models.Watcher) bool {
		return in[w.WatcherID] && (q.Cursor == nil || less(*q.Cursor, w.ID))
	})
	sort.Slice(ws, func(i, j int) bool { return less(ws[i].ID, ws[j].ID) })
	if int64(len(ws)) > q.Limit {
		ws = ws[:q.Limit]
	}
	return ws, nil
}

type groupStore struct{ db *DB }

func (s groupStore) Insert(_ context.Context, g models.GroupProfile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.groups {
		if existing.GroupProfileID == g.GroupProfileID {
			return errors.Wrapf(services.ErrConflict, "group_profile_id = %s is exist", g.GroupProfileID)
		}
	}
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	s.db.groups = append(s.db.groups, copyGroup(g))
	return nil
}

func (s groupStore) index(groupProfileID string) int {
	for i, g := range s.db.groups {
		if g.GroupProfileID == groupProfileID {
			return i
		}
	}
	return -1
}

func (s groupStore) Find(_ context.Context, groupProfileID, tenant string) (*models.GroupProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.index(groupProfileID)
	if i < 0 || (tenant != "" && s.db.groups[i].CreatedBy != tenant) {
		return nil, nil
	}
	g := copyGroup(s.db.groups[i])
	return &g, nil
}

func (s groupStore) update(op, groupProfileID string, at time.Time, apply func(g *models.GroupProfile)) (*models.GroupProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault(op); err != nil {
		return nil, err
	}
	i := s.index(groupProfileID)
	if i < 0 {
		return nil, nil
	}
	apply(&s.db.groups[i])
	if !at.IsZero() {
		s.db.groups[i].UpdatedAt = at
	}
	g := copyGroup(s.db.groups[i])
	return &g, nil
}

func addToSet(list []string, ids ...string) []string {
	have := set(list)
	for _, id := range ids {
		if !have[id] {
			have[id] = true
			list = append(list, id)
		}
	}
	return list
}

func pull(list []string, ids ...string) []string {
	drop := set(ids)
	out := []string{}
	for _, id := range list {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s groupStore) AddMembers(_ context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error) {
	return s.update("groups.AddMembers", groupProfileID, at, func(g *models.GroupProfile) {
		g.WatcherIDs = addToSet(g.WatcherIDs, watcherIDs...)
	})
}

func (s groupStore) RemoveMembers(_ context.Context, groupProfileID string, watcherIDs []string, at time.Time) (*models.GroupProfile, error) {
	return s.update("groups.RemoveMembers", groupProfileID, at, func(g *models.GroupProfile) {
		g.WatcherIDs = pull(g.WatcherIDs, watcherIDs...)
	})
}

func (s groupStore) PushActivity(_ context.Context, groupProfileID, activityID string) error {
	_, err := s.update("groups.PushActivity", groupProfileID, time.Time{}, func(g *models.GroupProfile) {
		g.ActivityIDs = addToSet(g.ActivityIDs, activityID)
	})
	return err
}

func (s groupStore) PullActivity(_ context.Context, groupProfileID, activityID string) error {
	_, err := s.update("groups.PullActivity", groupProfileID, time.Time{}, func(g *models.GroupProfile) {
		g.ActivityIDs = pull(g.ActivityIDs, activityID)
	})
	return err
}

func (s groupStore) MembersOfAnyGroup(_ context.Context, watcherIDs []string) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	present := map[string]bool{}
	for _, g := range s.db.groups {
		for _, id := range g.WatcherIDs {
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

type activityStore struct{ db *DB }

func (s activityStore) Insert(_ context.Context, a models.Activity) (primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault("activities.Insert"); err != nil {
		return primitive.NilObjectID, err
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Author = nil
	s.db.activities = append(s.db.activities, a)
	return a.ID, nil
}

func (s activityStore) DeleteInGroup(_ context.Context, id primitive.ObjectID, groupProfileID string) (*models.Activity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, a := range s.db.activities {
		if a.ID == id && a.GroupProfileID == groupProfileID {
			s.db.activities = append(s.db.activities[:i], s.db.activities[i+1:]...)
			return &a, nil
		}
	}
	return nil, nil
}

func (s activityStore) PageByGroup(_ context.Context, groupProfileID string, q services.PageQuery) ([]models.Activity, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Activity
	for _, a := range s.db.activities {
		if a.GroupProfileID != groupProfileID || (q.Cursor != nil && !less(a.ID, *q.Cursor)) {
			continue
		}
		a.Author = s.db.author(a.WatcherID)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[j].ID, out[i].ID) })
	if int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type notificationStore struct{ db *DB }

func (s notificationStore) Insert(ctx context.Context, n models.Notification) (primitive.ObjectID, error) {
	s.db.mu.Lock()
	err := s.db.fault("notifications.Insert")
	s.db.mu.Unlock()
	if err != nil {
		return primitive.NilObjectID, err
	}
	ids, err := s.insert([]models.Notification{n})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return ids[0], nil
}

func (s notificationStore) InsertMany(_ context.Context, ns []models.Notification) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	err := s.db.fault("notifications.InsertMany")
	s.db.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.insert(ns)
}

func (s notificationStore) insert(ns []models.Notification) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(ns))
	for _, n := range ns {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		n.Author = nil
		s.db.notifications = append(s.db.notifications, copyNotification(n))
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (s notificationStore) MarkRead(_ context.Context, id primitive.ObjectID, watcherID string) (*models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault("notifications.MarkRead"); err != nil {
		return nil, err
	}
	for i := range s.db.notifications {
		n := &s.db.notifications[i]
		if n.ID != id {
			continue
		}
		for j := range n.WatcherNotiStatus {
			if n.WatcherNotiStatus[j].WatcherID == watcherID && !n.WatcherNotiStatus[j].Status {
				n.WatcherNotiStatus[j].Status = true
				out := copyNotification(*n)
				return &out, nil
			}
		}
		return nil, nil
	}
	return nil, nil
}

func (s notificationStore) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, n := range s.db.notifications {
		if n.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s notificationStore) TakeByActivity(_ context.Context, activityID primitive.ObjectID) ([]models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var taken []models.Notification
	kept := []models.Notification{}
	for _, n := range s.db.notifications {
		if n.ActivityID != nil && *n.ActivityID == activityID {
			taken = append(taken, n)
			continue
		}
		kept = append(kept, n)
	}
	s.db.notifications = kept
	return taken, s.db.fault("notifications.TakeByActivity")
}

func (s notificationStore) CountUnread(_ context.Context, watcherID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fault("notifications.CountUnread"); err != nil {
		return 0, err
	}
	var count int64
	for _, n := range s.db.notifications {
		for _, st := range n.WatcherNotiStatus {
			if st.WatcherID == watcherID && !st.Status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (s notificationStore) PageForWatcher(_ context.Context, watcherID string, q services.PageQuery) ([]models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Notification
	for _, n := range s.db.notifications {
		if q.Cursor != nil && !less(n.ID, *q.Cursor) {
			continue
		}
		st, ok := n.StatusOf(watcherID)
		if !ok {
			continue
		}
		n.WatcherNotiStatus = []models.WatcherStatus{st}
		if n.AuthorID != nil {
			n.Author = s.db.author(*n.AuthorID)
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[j].ID, out[i].ID) })
	if int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
