package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jobwatch/jobwatch/internal/models"
)

// ApplicationRepo persists monitored applications.
type ApplicationRepo struct {
	DB *sql.DB
}

// NewApplicationRepo returns a new ApplicationRepo.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db}
}

const appColumns = `id, user_id, company, role, portal, url, status,
	COALESCE(last_fingerprint, ''), baseline_established_at, last_checked_at,
	last_drift_detected_at, last_status_change_at, next_scan_at,
	consecutive_failures, COALESCE(last_error_code, ''), COALESCE(last_error_message, ''),
	COALESCE(lock_owner, ''), COALESCE(lock_token, ''), lock_until,
	next_interview_at, COALESCE(next_interview_link, ''), COALESCE(next_interview_source, ''),
	created_at, updated_at`

func scanApplication(row *sql.Row) (*models.Application, error) {
	var a models.Application
	var baseline, checked, drift, statusChange, nextScan, lockUntil, interviewAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.Portal, &a.URL, &a.Status,
		&a.LastFingerprint, &baseline, &checked,
		&drift, &statusChange, &nextScan,
		&a.ConsecutiveFailures, &a.LastErrorCode, &a.LastErrorMessage,
		&a.LockOwner, &a.LockToken, &lockUntil,
		&interviewAt, &a.NextInterviewLink, &a.NextInterviewSource,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.BaselineEstablishedAt = timePtr(baseline)
	a.LastCheckedAt = timePtr(checked)
	a.LastDriftDetectedAt = timePtr(drift)
	a.LastStatusChangeAt = timePtr(statusChange)
	a.NextScanAt = timePtr(nextScan)
	a.LockUntil = timePtr(lockUntil)
	a.NextInterviewAt = timePtr(interviewAt)
	return &a, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Get returns one application scoped by (id, user), or nil if not found.
func (r *ApplicationRepo) Get(ctx context.Context, id, userID string) (*models.Application, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	a, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new application and returns its id.
func (r *ApplicationRepo) Create(ctx context.Context, userID, company, role, portal, url string, nextScanAt *time.Time) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, company, role, portal, url, status, next_scan_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 'Applied', $7)`,
		id, userID, company, role, portal, url, nullTime(nextScanAt),
	)
	return id, err
}

// ListByUser returns a user's applications, most recently updated first.
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Application, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Application
	for rows.Next() {
		var a models.Application
		var baseline, checked, drift, statusChange, nextScan, lockUntil, interviewAt sql.NullTime
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Company, &a.Role, &a.Portal, &a.URL, &a.Status,
			&a.LastFingerprint, &baseline, &checked,
			&drift, &statusChange, &nextScan,
			&a.ConsecutiveFailures, &a.LastErrorCode, &a.LastErrorMessage,
			&a.LockOwner, &a.LockToken, &lockUntil,
			&interviewAt, &a.NextInterviewLink, &a.NextInterviewSource,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.BaselineEstablishedAt = timePtr(baseline)
		a.LastCheckedAt = timePtr(checked)
		a.LastDriftDetectedAt = timePtr(drift)
		a.LastStatusChangeAt = timePtr(statusChange)
		a.NextScanAt = timePtr(nextScan)
		a.LockUntil = timePtr(lockUntil)
		a.NextInterviewAt = timePtr(interviewAt)
		list = append(list, a)
	}
	return list, rows.Err()
}

// SelectDue returns ids of applications due for a background scan:
// next_scan_at has passed and no live lease is held. Ordered by due time
// so the longest-waiting targets go first.
func (r *ApplicationRepo) SelectDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id FROM applications
		 WHERE next_scan_at IS NOT NULL AND next_scan_at <= $1
		   AND (lock_until IS NULL OR lock_until < $1)
		 ORDER BY next_scan_at ASC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OwnerOf returns the user_id owning an application, or "" if missing.
func (r *ApplicationRepo) OwnerOf(ctx context.Context, id string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id FROM applications WHERE id = $1`, id,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return userID, err
}

// ScanSuccess carries the state persisted after a successful scan.
type ScanSuccess struct {
	ID            string
	UserID        string
	Fingerprint   string
	Status        string
	DriftDetected bool
	StatusChanged bool
	CheckedAt     time.Time
}

// RecordScanSuccess persists the scan outcome in one update: fingerprint,
// check timestamp, baseline (first scan only), drift and status-change
// timestamps when they fired, and a reset of the failure counters.
func (r *ApplicationRepo) RecordScanSuccess(ctx context.Context, s ScanSuccess) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE applications SET
			last_fingerprint = $1,
			baseline_established_at = COALESCE(baseline_established_at, $2),
			last_checked_at = $2,
			last_drift_detected_at = CASE WHEN $3 THEN $2 ELSE last_drift_detected_at END,
			status = $4,
			last_status_change_at = CASE WHEN $5 THEN $2 ELSE last_status_change_at END,
			consecutive_failures = 0,
			last_error_code = NULL,
			last_error_message = NULL,
			updated_at = $2
		 WHERE id = $6 AND user_id = $7`,
		s.Fingerprint, s.CheckedAt, s.DriftDetected, s.Status, s.StatusChanged, s.ID, s.UserID,
	)
	return err
}

// RecordScanFailure bumps the failure counter and schedules the next
// retry. Persisted before the scan error is surfaced so the application
// stays schedulable.
func (r *ApplicationRepo) RecordScanFailure(ctx context.Context, id, userID string, failures int, code, message string, nextScanAt, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE applications SET
			consecutive_failures = $1,
			last_error_code = $2,
			last_error_message = $3,
			next_scan_at = $4,
			updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		failures, code, message, nextScanAt, now, id, userID,
	)
	return err
}

// FindByCompanyRole returns the id of the newest application matching
// (user, company, role) case-insensitively, or "" when none exists.
func (r *ApplicationRepo) FindByCompanyRole(ctx context.Context, userID, company, role string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM applications
		 WHERE user_id = $1 AND lower(company) = lower($2) AND lower(role) = lower($3)
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		userID, company, role,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

// Promotion carries the fields the attach pipeline may move forward.
type Promotion struct {
	ID                  string
	UserID              string
	Status              string
	Role                string
	NextInterviewAt     *time.Time
	NextInterviewLink   string
	NextInterviewSource string
	Now                 time.Time
}

// ApplyPromotion writes the promoted status/role/interview metadata.
// Callers pass the current values for fields that did not move.
func (r *ApplicationRepo) ApplyPromotion(ctx context.Context, p Promotion) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE applications SET
			status = $1,
			role = $2,
			next_interview_at = $3,
			next_interview_link = $4,
			next_interview_source = $5,
			updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		p.Status, p.Role, nullTime(p.NextInterviewAt), nullString(p.NextInterviewLink),
		nullString(p.NextInterviewSource), p.Now, p.ID, p.UserID,
	)
	return err
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
