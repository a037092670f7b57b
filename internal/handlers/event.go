package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/go-chi/chi/v5"
)

// EventHandler serves the append-only application audit log.
type EventHandler struct {
	Repo *repo.EventRepo
	Apps *repo.ApplicationRepo
}

// ListEvents returns events for one application, newest first (query: limit, offset).
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.UserID(r.Context())

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	app, err := h.Apps.Get(r.Context(), id, userID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if app == nil {
		JSONError(w, "application not found", http.StatusNotFound)
		return
	}

	events, err := h.Repo.ListByApplication(r.Context(), id, userID, limit, offset)
	if err != nil {
		JSONError(w, "failed to fetch events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}
