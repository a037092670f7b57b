package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestApplicationRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("app-1", "user-1").
		WillReturnRows(sqlmock.NewRows(appCols).AddRow(
			"app-1", "user-1", "Acme", "Engineer", "ATS", "https://x", "Applied",
			"fp", now, now,
			nil, nil, now,
			2, "FETCH_FAILED", "timeout",
			"", "", nil,
			nil, "", "",
			now, now,
		))

	r := NewApplicationRepo(db)
	a, err := r.Get(context.Background(), "app-1", "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a == nil {
		t.Fatal("Get returned nil")
	}
	if a.Company != "Acme" || a.ConsecutiveFailures != 2 || a.LastErrorCode != "FETCH_FAILED" {
		t.Errorf("unexpected application: %+v", a)
	}
	if a.BaselineEstablishedAt == nil || a.LastDriftDetectedAt != nil {
		t.Errorf("nullable times wrong: baseline=%v drift=%v", a.BaselineEstablishedAt, a.LastDriftDetectedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestApplicationRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, company`).
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows(appCols))

	r := NewApplicationRepo(db)
	a, err := r.Get(context.Background(), "missing", "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != nil {
		t.Errorf("Get = %+v, want nil", a)
	}
}

func TestApplicationRepo_SelectDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id FROM applications`).
		WithArgs(now, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	r := NewApplicationRepo(db)
	ids, err := r.SelectDue(context.Background(), now, 5)
	if err != nil {
		t.Fatalf("SelectDue: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ids = %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestApplicationRepo_RecordScanFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	next := now.Add(2 * time.Minute)
	mock.ExpectExec(`UPDATE applications SET`).
		WithArgs(3, "FETCH_FAILED", "connection refused", next, now, "app-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewApplicationRepo(db)
	err = r.RecordScanFailure(context.Background(), "app-1", "user-1", 3, "FETCH_FAILED", "connection refused", next, now)
	if err != nil {
		t.Fatalf("RecordScanFailure: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestApplicationRepo_FindByCompanyRole_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM applications`).
		WithArgs("user-1", "Acme", "Engineer").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := NewApplicationRepo(db)
	id, err := r.FindByCompanyRole(context.Background(), "user-1", "Acme", "Engineer")
	if err != nil {
		t.Fatalf("FindByCompanyRole: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}

func TestApplicationRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewApplicationRepo(db)
	id, err := r.Create(context.Background(), "user-1", "Acme", "Engineer", "ATS", "https://x", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Error("Create returned empty id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
