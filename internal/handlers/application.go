package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/scan"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ApplicationHandler struct {
	Repo     *repo.ApplicationRepo
	Executor *scan.Executor
}

//
// ==========================
// Create Application
// ==========================
//

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Company string `json:"company" validate:"required,min=1,max=255"`
		Role    string `json:"role" validate:"required,min=1,max=255"`
		Portal  string `json:"portal" validate:"max=64"`
		URL     string `json:"url" validate:"omitempty,url,max=2048"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := middleware.UserID(r.Context())

	var nextScan *time.Time
	if input.URL != "" {
		now := time.Now().UTC()
		nextScan = &now
	}

	id, err := h.Repo.Create(r.Context(), userID, input.Company, input.Role, input.Portal, input.URL, nextScan)
	if err != nil {
		JSONError(w, "failed to create application", http.StatusInternalServerError)
		return
	}

	// Establish the baseline right away when a URL is present. Failures
	// land in last_error_* and the scheduler retries with backoff.
	if input.URL != "" && h.Executor != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := h.Executor.Execute(ctx, id, userID, models.SourceManual); err != nil {
				log.Printf("handlers: initial scan for %s failed: %v", id, err)
			}
		}()
	}

	app, err := h.Repo.Get(r.Context(), id, userID)
	if err != nil || app == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(app)
}

//
// ==========================
// List Applications
// ==========================
//

func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
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

	userID := middleware.UserID(r.Context())

	apps, err := h.Repo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		JSONError(w, "failed to fetch applications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apps)
}

//
// ==========================
// Get Application By ID
// ==========================
//

func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.UserID(r.Context())

	app, err := h.Repo.Get(r.Context(), id, userID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if app == nil {
		JSONError(w, "application not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app)
}

//
// ==========================
// Trigger Scan
// ==========================
//

func (h *ApplicationHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.UserID(r.Context())

	result, err := h.Executor.Execute(r.Context(), id, userID, models.SourceManual)
	if err != nil {
		var ferr *scan.FailureError
		switch {
		case errors.Is(err, scan.ErrNotFound):
			JSONError(w, "application not found", http.StatusNotFound)
		case errors.Is(err, scan.ErrMissingURL):
			JSONError(w, "application has no url", http.StatusBadRequest)
		case errors.As(err, &ferr):
			JSONError(w, ferr.Code, http.StatusBadGateway)
		default:
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
