package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// UpdateGroupWatchersRequest lists watchers to add or remove
type UpdateGroupWatchersRequest struct {
	WatcherIDs []string `json:"watcher_ids" validate:"required,min=1"`
}

// CreateGroupProfile handles POST /group-profiles
func (h *Handler) CreateGroupProfile(w http.ResponseWriter, r *http.Request) {
	var req services.GroupInput
	if !h.decode(w, r, &req) {
		return
	}
	group, err := h.groups.Create(r.Context(), middleware.Tenant(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Group profile created", group)
}

// GetGroupProfile handles GET /group-profiles/{group_profile_id}
func (h *Handler) GetGroupProfile(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.Get(r.Context(), middleware.Tenant(r.Context()), chi.URLParam(r, "group_profile_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", group)
}

// UpdateGroupWatchers handles PATCH /group-profiles/{group_profile_id}/watchers?remove=
func (h *Handler) UpdateGroupWatchers(w http.ResponseWriter, r *http.Request) {
	remove := false
	if raw := r.URL.Query().Get("remove"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(w, "remove must be true or false")
			return
		}
		remove = v
	}
	var req UpdateGroupWatchersRequest
	if !h.decode(w, r, &req) {
		return
	}
	group, err := h.groups.UpdateWatchers(r.Context(),
		middleware.Tenant(r.Context()),
		chi.URLParam(r, "group_profile_id"),
		req.WatcherIDs,
		remove,
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Group profile updated", group)
}
