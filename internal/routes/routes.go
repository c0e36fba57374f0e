package routes

import (
	"net/http"

	"github.com/AnshRaj112/watchfeed-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// Guards are the per-surface middlewares. Nil guards are skipped.
type Guards struct {
	ServerAuth  func(http.Handler) http.Handler // tenant routes
	WatcherAuth func(http.Handler) http.Handler // bearer routes
	WriteLimit  func(http.Handler) http.Handler // activity and notification writes
}

func use(r chi.Router, mws ...func(http.Handler) http.Handler) chi.Router {
	for _, mw := range mws {
		if mw != nil {
			r = r.With(mw)
		}
	}
	return r
}

func SetupRoutes(r chi.Router, h *handlers.Handler, g Guards) {
	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Tenant routes
		t := use(r, g.ServerAuth)
		t.Post("/watchers", h.CreateWatcher)
		t.Post("/watchers/batch", h.CreateWatchers)
		t.Post("/watchers/token", h.IssueToken)
		t.Get("/watchers/{watcher_id}", h.GetWatcher)
		t.Delete("/watchers/{watcher_id}", h.DeleteWatcher)
		t.Delete("/watchers", h.DeleteWatchers)

		t.Post("/group-profiles", h.CreateGroupProfile)
		t.Get("/group-profiles/{group_profile_id}", h.GetGroupProfile)
		t.Patch("/group-profiles/{group_profile_id}/watchers", h.UpdateGroupWatchers)
		t.Get("/group-profiles/{group_profile_id}/watchers", h.GroupWatchers)

		tw := use(t, g.WriteLimit)
		tw.Post("/activities", h.CreateActivity)
		tw.Delete("/group-profiles/{group_profile_id}/activities/{activity_id}", h.DeleteActivity)
		tw.Post("/notifications", h.BroadcastNotification)

		t.Get("/notifications", h.NotificationFeed)
		t.Patch("/notifications/{notification_id}", h.AcknowledgeNotification)

		// Watcher routes
		w := use(r, g.WatcherAuth)
		w.Get("/group-profiles/{group_profile_id}/activities", h.ActivityFeed)
		w.Get("/notifications/unread-count", h.UnreadCount)
	})
}
