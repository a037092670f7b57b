package lease

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestManager_Acquire(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := NewManager(db, "worker-a")
	l, acquired, err := m.Acquire(context.Background(), "app-1", 2*time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !acquired {
		t.Fatal("acquired = false, want true")
	}
	if l.Owner != "worker-a" {
		t.Errorf("owner = %q, want worker-a", l.Owner)
	}
	if l.Token == "" {
		t.Error("token is empty")
	}
	if !l.Until.After(time.Now()) {
		t.Errorf("until = %v not in the future", l.Until)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestManager_Acquire_Held(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Conditional update misses: someone else holds an unexpired lease.
	mock.ExpectExec(`UPDATE applications`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := NewManager(db, "worker-b")
	_, acquired, err := m.Acquire(context.Background(), "app-1", 2*time.Minute)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if acquired {
		t.Error("acquired = true, want false for a held lease")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestManager_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-1", "tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := NewManager(db, "worker-a")
	released, err := m.Release(context.Background(), "app-1", "tok-1")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !released {
		t.Error("released = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestManager_Release_TokenMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Lease expired and was re-acquired; the stale token matches nothing.
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("app-1", "stale-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := NewManager(db, "worker-a")
	released, err := m.Release(context.Background(), "app-1", "stale-token")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released {
		t.Error("released = true, want false for a stale token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestNewManager_DefaultOwner(t *testing.T) {
	m := NewManager(nil, "")
	if m.Owner == "" || m.Owner == ":" {
		t.Errorf("default owner = %q", m.Owner)
	}
}
