// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/guest-list/internal/model"
	"github.com/Shivanand-hulikatti/guest-list/internal/query"
	"github.com/Shivanand-hulikatti/guest-list/internal/repository"
	"github.com/Shivanand-hulikatti/guest-list/internal/service"
)

const endpointSummary = "Endpoints: GET/guests GET/guests/:id GET/guests?name= GET/guests?attending=true/false POST/guests"

const saveFailed = "Could not save guest"

// GuestHandler holds all HTTP handlers for the guest API.
type GuestHandler struct {
	svc    *service.GuestService
	logger *slog.Logger
}

// NewGuestHandler constructs a GuestHandler.
func NewGuestHandler(svc *service.GuestService) *GuestHandler {
	return &GuestHandler{svc: svc, logger: slog.Default().With("component", "handler")}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	return json.NewDecoder(r.Body).Decode(dst)
}

// optionalParam returns the first value of key, or nil when key is absent.
func optionalParam(r *http.Request, key string) *string {
	values, ok := r.URL.Query()[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Index handles GET /
func (h *GuestHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, endpointSummary)
}

// ListGuests handles GET /guests
// Optional query parameters: name (pattern on first or last name, any case)
// and attending (literal match on isAttending).
func (h *GuestHandler) ListGuests(w http.ResponseWriter, r *http.Request) {
	filters := query.Filters{
		Name:      optionalParam(r, "name"),
		Attending: optionalParam(r, "attending"),
	}

	guests, err := h.svc.ListGuests(r.Context(), filters)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrInvalidPattern), errors.Is(err, query.ErrPatternTooLong):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "list guests", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	// An empty result is reported as 404, matching the established API.
	if len(guests) == 0 {
		writeError(w, http.StatusNotFound, "No guests found")
		return
	}

	writeJSON(w, http.StatusOK, model.GuestList{Guests: guests})
}

// GetGuest handles GET /guests/{id}
func (h *GuestHandler) GetGuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	guest, err := h.svc.GetGuest(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Guest not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get guest", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, guest)
}

// CreateGuest handles POST /guests
func (h *GuestHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGuestRequest
	// An empty body decodes to an empty request and fails validation below.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, model.SaveErrorResponse{
			Message: saveFailed,
			Error: map[string]model.FieldError{
				"body": {Message: err.Error(), Kind: "parse", Path: "body"},
			},
		})
		return
	}

	guest, err := h.svc.CreateGuest(r.Context(), req)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, model.SaveErrorResponse{Message: saveFailed, Error: verr.Fields})
			return
		}
		h.logger.ErrorContext(r.Context(), "create guest", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, guest)
}

// NotFound handles unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}
