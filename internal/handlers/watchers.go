package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// CreateWatchersRequest registers a batch of watchers
type CreateWatchersRequest struct {
	Watchers []services.WatcherInput `json:"watchers" validate:"required,min=1,dive"`
}

// DeleteWatchersRequest removes a batch of watchers
type DeleteWatchersRequest struct {
	ListWatcherID []string `json:"list_watcher_id" validate:"required,min=1"`
}

// WatcherIDRequest names one watcher
type WatcherIDRequest struct {
	WatcherID string `json:"watcher_id" validate:"required"`
}

func queryLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// CreateWatcher handles POST /watchers
func (h *Handler) CreateWatcher(w http.ResponseWriter, r *http.Request) {
	var req services.WatcherInput
	if !h.decode(w, r, &req) {
		return
	}
	watcher, err := h.watchers.Create(r.Context(), middleware.Tenant(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Watcher created", watcher)
}

// CreateWatchers handles POST /watchers/batch
func (h *Handler) CreateWatchers(w http.ResponseWriter, r *http.Request) {
	var req CreateWatchersRequest
	if !h.decode(w, r, &req) {
		return
	}
	watchers, err := h.watchers.CreateMany(r.Context(), middleware.Tenant(r.Context()), req.Watchers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Watchers created", watchers)
}

// GetWatcher handles GET /watchers/{watcher_id}
func (h *Handler) GetWatcher(w http.ResponseWriter, r *http.Request) {
	watcher, err := h.watchers.Get(r.Context(), chi.URLParam(r, "watcher_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", watcher)
}

// DeleteWatcher handles DELETE /watchers/{watcher_id}
func (h *Handler) DeleteWatcher(w http.ResponseWriter, r *http.Request) {
	watcher, err := h.watchers.Delete(r.Context(), chi.URLParam(r, "watcher_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Watcher deleted", watcher)
}

// DeleteWatchers handles DELETE /watchers
func (h *Handler) DeleteWatchers(w http.ResponseWriter, r *http.Request) {
	var req DeleteWatchersRequest
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.watchers.DeleteMany(r.Context(), req.ListWatcherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Watchers deleted", map[string]int64{"deleted": n})
}

// IssueToken handles POST /watchers/token
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req WatcherIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.watchers.IssueToken(r.Context(), req.WatcherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", token)
}

// GroupWatchers handles GET /group-profiles/{group_profile_id}/watchers
func (h *Handler) GroupWatchers(w http.ResponseWriter, r *http.Request) {
	page, err := h.watchers.Members(r.Context(),
		middleware.Tenant(r.Context()),
		chi.URLParam(r, "group_profile_id"),
		r.URL.Query().Get("last_watcher_id"),
		queryLimit(r),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", page)
}
