package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jobwatch/jobwatch/internal/attach"
	"github.com/jobwatch/jobwatch/internal/middleware"
)

// AttachHandler exposes the email attach & promote pipeline.
type AttachHandler struct {
	Pipeline *attach.Pipeline
}

// RunAttach processes the caller's pending inbound emails (query: limit).
func (h *AttachHandler) RunAttach(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	userID := middleware.UserID(r.Context())

	sum, err := h.Pipeline.RunAttach(r.Context(), userID, limit)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sum)
}
