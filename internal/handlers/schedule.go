package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
)

// ScheduleHandler handles attach schedule CRUD.
type ScheduleHandler struct {
	Repo *repo.ScheduleRepo
}

// ListSchedules returns the caller's attach schedules (query: limit, offset).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	userID := middleware.UserID(r.Context())

	list, err := h.Repo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CreateSchedule creates a new attach schedule. Body: {"cron_expr": "0 * * * *", "enabled": true}.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CronExpr string `json:"cron_expr"`
		Enabled  *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.CronExpr == "" {
		fields["cron_expr"] = "required"
	} else if _, err := cron.ParseStandard(input.CronExpr); err != nil {
		fields["cron_expr"] = "invalid cron expression"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	userID := middleware.UserID(r.Context())

	s, err := h.Repo.Create(r.Context(), userID, input.CronExpr, enabled)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s)
}

// DeleteSchedule removes one of the caller's schedules.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r.Context())

	if err := h.Repo.Delete(r.Context(), id, userID); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
