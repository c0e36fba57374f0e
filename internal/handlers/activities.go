package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/AnshRaj112/watchfeed-backend/internal/models"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// CreateActivityResponse reports the stored activity under its creation day
// and who was notified
type CreateActivityResponse struct {
	CreatedDay string          `json:"created_day"`
	Activity   models.Activity `json:"activity"`
	Tagged     []string        `json:"tagged_watcher_ids"`
	Untagged   []string        `json:"untagged_watcher_ids"`
}

// CreateActivity handles POST /activities (multipart)
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.badRequest(w, "Failed to parse form: %s", err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := services.NewActivity{
		Tenant:         middleware.Tenant(r.Context()),
		GroupProfileID: strings.TrimSpace(r.FormValue("group_profile_id")),
		WatcherID:      strings.TrimSpace(r.FormValue("watcher_id")),
		Content:        r.FormValue("content"),
	}
	if in.GroupProfileID == "" || in.WatcherID == "" {
		h.badRequest(w, "group_profile_id and watcher_id are required")
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.badRequest(w, "Failed to read file: %s", err.Error())
			return
		}
		in.File = &services.Attachment{Name: header.Filename, Data: data}
	case err != http.ErrMissingFile:
		h.badRequest(w, "Invalid file: %s", err.Error())
		return
	}

	created, err := h.engine.CreateActivity(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Activity created", CreateActivityResponse{
		CreatedDay: models.DayOf(created.Activity.CreatedAt),
		Activity:   created.Activity,
		Tagged:     created.Tagged,
		Untagged:   created.Untagged,
	})
}

// ActivityFeed handles GET /group-profiles/{group_profile_id}/activities
func (h *Handler) ActivityFeed(w http.ResponseWriter, r *http.Request) {
	page, err := h.feeds.ActivityFeed(r.Context(),
		chi.URLParam(r, "group_profile_id"),
		r.URL.Query().Get("last_activity_id"),
		queryLimit(r),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", page)
}

// DeleteActivity handles DELETE /group-profiles/{group_profile_id}/activities/{activity_id}
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	err := h.engine.DeleteActivity(r.Context(),
		middleware.Tenant(r.Context()),
		chi.URLParam(r, "group_profile_id"),
		chi.URLParam(r, "activity_id"),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Activity deleted", nil)
}
