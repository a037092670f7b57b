// Package lease implements best-effort per-application scan exclusion:
// a TTL'd (owner, token, expiry) claim stored on the application row and
// taken with a conditional update. There is no heartbeat or renewal, and
// writes elsewhere do not check the token, so a scan that outlives its
// TTL silently loses the exclusivity guarantee.
package lease

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Lease is a granted claim on an application.
type Lease struct {
	Token string
	Owner string
	Until time.Time
}

// Manager acquires and releases scan leases.
type Manager struct {
	DB    *sql.DB
	Owner string
}

// NewManager returns a Manager identifying itself as owner. When owner
// is empty, hostname:pid is used.
func NewManager(db *sql.DB, owner string) *Manager {
	if owner == "" {
		host, _ := os.Hostname()
		owner = fmt.Sprintf("%s:%d", host, os.Getpid())
	}
	return &Manager{DB: db, Owner: owner}
}

// Acquire tries to take the lease for ttl. It succeeds only when no
// lease is held or the held lease has expired; the check and the write
// are a single conditional UPDATE, so concurrent acquirers cannot both
// win. Losing the race is not an error: acquired is false.
func (m *Manager) Acquire(ctx context.Context, applicationID string, ttl time.Duration) (Lease, bool, error) {
	now := time.Now()
	l := Lease{
		Token: uuid.NewString(),
		Owner: m.Owner,
		Until: now.Add(ttl),
	}

	res, err := m.DB.ExecContext(ctx,
		`UPDATE applications
		 SET lock_until = $1, lock_owner = $2, lock_token = $3
		 WHERE id = $4
		   AND (lock_until IS NULL OR lock_until < $5)`,
		l.Until, l.Owner, l.Token, applicationID, now,
	)
	if err != nil {
		return Lease{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Lease{}, false, err
	}
	return l, n == 1, nil
}

// Release clears the lease only when token still matches the stored one.
// A mismatch (lease expired and re-acquired by someone else) is a no-op,
// not an error.
func (m *Manager) Release(ctx context.Context, applicationID, token string) (bool, error) {
	res, err := m.DB.ExecContext(ctx,
		`UPDATE applications
		 SET lock_until = NULL, lock_owner = NULL, lock_token = NULL
		 WHERE id = $1 AND lock_token = $2`,
		applicationID, token,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
