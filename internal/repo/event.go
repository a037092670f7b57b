package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jobwatch/jobwatch/internal/models"
)

// EventRepo appends to and reads the application_events audit log.
type EventRepo struct {
	DB *sql.DB
}

// NewEventRepo returns a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db}
}

// Append inserts one audit event. The id is generated when empty.
func (r *EventRepo) Append(ctx context.Context, e models.ApplicationEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO application_events (
			id, application_id, user_id, kind, source,
			prev_status, next_status, prev_fingerprint, next_fingerprint,
			email_id, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.ApplicationID, e.UserID, e.Kind, e.Source,
		nullString(e.PrevStatus), nullString(e.NextStatus),
		nullString(e.PrevFingerprint), nullString(e.NextFingerprint),
		nullString(e.EmailID), []byte(e.Payload), e.CreatedAt,
	)
	return err
}

// HasEmailEvent reports whether an event of the given kind already exists
// for (application, email). This existence check is what keeps attach and
// promote idempotent against re-processing the same message.
func (r *EventRepo) HasEmailEvent(ctx context.Context, applicationID, emailID, kind string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM application_events
		 WHERE application_id = $1 AND email_id = $2 AND kind = $3
		 LIMIT 1`,
		applicationID, emailID, kind,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByApplication returns an application's events, newest first.
func (r *EventRepo) ListByApplication(ctx context.Context, applicationID, userID string, limit, offset int) ([]models.ApplicationEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, application_id, user_id, kind, source,
		        COALESCE(prev_status, ''), COALESCE(next_status, ''),
		        COALESCE(prev_fingerprint, ''), COALESCE(next_fingerprint, ''),
		        COALESCE(email_id, ''), COALESCE(payload, 'null'), created_at
		 FROM application_events
		 WHERE application_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		applicationID, userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ApplicationEvent
	for rows.Next() {
		var e models.ApplicationEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.UserID, &e.Kind, &e.Source,
			&e.PrevStatus, &e.NextStatus, &e.PrevFingerprint, &e.NextFingerprint,
			&e.EmailID, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		list = append(list, e)
	}
	return list, rows.Err()
}
