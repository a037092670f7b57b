package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jobwatch/jobwatch/internal/fetch"
	"github.com/jobwatch/jobwatch/internal/middleware"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/scan"
)

var appCols = []string{
	"id", "user_id", "company", "role", "portal", "url", "status",
	"last_fingerprint", "baseline_established_at", "last_checked_at",
	"last_drift_detected_at", "last_status_change_at", "next_scan_at",
	"consecutive_failures", "last_error_code", "last_error_message",
	"lock_owner", "lock_token", "lock_until",
	"next_interview_at", "next_interview_link", "next_interview_source",
	"created_at", "updated_at",
}

func appRow(id, url, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(appCols).AddRow(
		id, "user-1", "Acme", "Engineer", "ATS", url, status,
		"", nil, nil,
		nil, nil, nil,
		0, "", "",
		"", "", nil,
		nil, "", "",
		now, now,
	)
}

// requestAs returns a request carrying the authenticated user and chi URL params.
func requestAs(method, path, userID string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func newAppHandler(t *testing.T) (*ApplicationHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	appRepo := repo.NewApplicationRepo(db)
	h := &ApplicationHandler{
		Repo: appRepo,
		Executor: &scan.Executor{
			Apps:        appRepo,
			Events:      repo.NewEventRepo(db),
			Fetch:       fetch.New(2 * time.Second),
			BackoffBase: time.Minute,
			BackoffCap:  time.Hour,
		},
	}
	return h, mock, func() { db.Close() }
}

func TestListApplications(t *testing.T) {
	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("user-1", 50, 0).
		WillReturnRows(appRow("app-1", "", "Applied"))

	req := requestAs("GET", "/v1/applications", "user-1", nil, nil)
	rr := httptest.NewRecorder()
	h.ListApplications(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var apps []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&apps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(apps) != 1 || apps[0].ID != "app-1" {
		t.Errorf("unexpected list: %+v", apps)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCreateApplication_Validation(t *testing.T) {
	h, _, closeDB := newAppHandler(t)
	defer closeDB()

	body := []byte(`{"company": "", "role": "Engineer"}`)
	req := requestAs("POST", "/v1/applications", "user-1", body, nil)
	rr := httptest.NewRecorder()
	h.CreateApplication(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCreateApplication_InvalidJSON(t *testing.T) {
	h, _, closeDB := newAppHandler(t)
	defer closeDB()

	req := requestAs("POST", "/v1/applications", "user-1", []byte(`{not json`), nil)
	rr := httptest.NewRecorder()
	h.CreateApplication(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetApplication_NotFound(t *testing.T) {
	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows(appCols))

	req := requestAs("GET", "/v1/applications/missing", "user-1", nil, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()
	h.GetApplication(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestTriggerScan_NotFound(t *testing.T) {
	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows(appCols))

	req := requestAs("POST", "/v1/applications/missing/scan", "user-1", nil, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()
	h.TriggerScan(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestTriggerScan_MissingURL(t *testing.T) {
	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("app-1", "user-1").
		WillReturnRows(appRow("app-1", "", "Applied"))

	req := requestAs("POST", "/v1/applications/app-1/scan", "user-1", nil, map[string]string{"id": "app-1"})
	rr := httptest.NewRecorder()
	h.TriggerScan(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestTriggerScan_FetchFailure(t *testing.T) {
	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("app-1", "user-1").
		WillReturnRows(appRow("app-1", "http://127.0.0.1:1", "Applied"))
	// The failure is persisted before the handler replies.
	mock.ExpectExec(`UPDATE applications SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := requestAs("POST", "/v1/applications/app-1/scan", "user-1", nil, map[string]string{"id": "app-1"})
	rr := httptest.NewRecorder()
	h.TriggerScan(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTriggerScan_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Your application is under review.</body></html>`))
	}))
	defer srv.Close()

	h, mock, closeDB := newAppHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("app-1", "user-1").
		WillReturnRows(appRow("app-1", srv.URL, "Applied"))
	mock.ExpectExec(`UPDATE applications SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO application_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := requestAs("POST", "/v1/applications/app-1/scan", "user-1", nil, map[string]string{"id": "app-1"})
	rr := httptest.NewRecorder()
	h.TriggerScan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var res struct {
		Status        string `json:"status"`
		StatusChanged bool   `json:"status_changed"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Status != "Under Review" || !res.StatusChanged {
		t.Errorf("result = %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
