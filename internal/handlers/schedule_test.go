package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jobwatch/jobwatch/internal/repo"
)

func TestScheduleHandler_ListSchedules(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, cron_expr, enabled, created_at`).
		WithArgs("user-1", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cron_expr", "enabled", "created_at"}).
			AddRow(1, "user-1", "0 * * * *", true, now))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	req := requestAs("GET", "/v1/attach/schedules", "user-1", nil, nil)
	rr := httptest.NewRecorder()
	h.ListSchedules(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	var list []struct {
		ID       int    `json:"id"`
		CronExpr string `json:"cron_expr"`
		Enabled  bool   `json:"enabled"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].CronExpr != "0 * * * *" {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleHandler_CreateSchedule_InvalidCron(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	body := []byte(`{"cron_expr": "not a cron"}`)
	req := requestAs("POST", "/v1/attach/schedules", "user-1", body, nil)
	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestScheduleHandler_CreateSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO attach_schedules`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "cron_expr", "enabled", "created_at"}).
			AddRow(7, "user-1", "*/30 * * * *", true, now))

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	body := []byte(`{"cron_expr": "*/30 * * * *"}`)
	req := requestAs("POST", "/v1/attach/schedules", "user-1", body, nil)
	rr := httptest.NewRecorder()
	h.CreateSchedule(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != 7 {
		t.Errorf("id = %d, want 7", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleHandler_DeleteSchedule_InvalidID(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &ScheduleHandler{Repo: repo.NewScheduleRepo(db)}

	req := requestAs("DELETE", "/v1/attach/schedules/abc", "user-1", nil, map[string]string{"id": "abc"})
	rr := httptest.NewRecorder()
	h.DeleteSchedule(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
