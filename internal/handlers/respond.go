package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/AnshRaj112/watchfeed-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

var errorClasses = []struct {
	sentinel error
	status   int
	code     string
}{
	{services.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrUpstream, http.StatusBadGateway, "upstream_failure"},
	{services.ErrCacheInconsistency, http.StatusInternalServerError, "cache_inconsistency"},
}

// message drops the trailing sentinel text from a wrapped error.
func message(err, sentinel error) string {
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

// fail maps a service error onto the failure envelope. Unclassified errors
// are logged and reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	for _, c := range errorClasses {
		if errors.Is(err, c.sentinel) {
			ev := h.log.Warn()
			if c.status >= http.StatusInternalServerError {
				ev = h.log.Error()
			}
			ev.Err(err).Str("request_id", middleware.RequestID(r.Context())).Str("error_code", c.code).Msg("request failed")
			writeJSON(w, c.status, ErrorResponse{ErrorCode: c.code, Message: message(err, c.sentinel)})
			return
		}
	}
	h.log.Error().Err(err).Str("request_id", middleware.RequestID(r.Context())).Msg("internal error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{ErrorCode: "internal", Message: "Internal server error"})
}

func (h *Handler) badRequest(w http.ResponseWriter, format string, args ...interface{}) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{ErrorCode: "validation_failed", Message: fmt.Sprintf(format, args...)})
}

// decode reads a JSON body into dst and runs struct validation.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.badRequest(w, "%s", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "min":
			parts = append(parts, fe.Field()+" must have at least "+fe.Param()+" item(s)")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
