package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jobwatch/jobwatch/internal/models"
)

// EmailRepo persists inbound emails and their match state.
type EmailRepo struct {
	DB *sql.DB
}

// NewEmailRepo returns a new EmailRepo.
func NewEmailRepo(db *sql.DB) *EmailRepo {
	return &EmailRepo{DB: db}
}

// ListUnattached returns a user's unattached emails, newest first.
func (r *EmailRepo) ListUnattached(ctx context.Context, userID string, limit int) ([]models.InboundEmail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, source, from_email, subject, raw_body, received_at,
		        match_score, match_reasons
		 FROM inbound_emails
		 WHERE user_id = $1 AND (matched_application_id IS NULL OR matched_application_id = '')
		 ORDER BY received_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.InboundEmail
	for rows.Next() {
		var e models.InboundEmail
		var score sql.NullInt64
		var reasons []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Source, &e.FromEmail, &e.Subject,
			&e.RawBody, &e.ReceivedAt, &score, &reasons); err != nil {
			return nil, err
		}
		if score.Valid {
			v := int(score.Int64)
			e.MatchScore = &v
		}
		if len(reasons) > 0 {
			_ = json.Unmarshal(reasons, &e.MatchReasons)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkAttached records the match outcome on the email row. Always run,
// even when the attach event already existed, so a re-score is visible.
func (r *EmailRepo) MarkAttached(ctx context.Context, emailID, userID, applicationID string, score int, reasons []string, at time.Time) error {
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE inbound_emails SET
			matched_application_id = $1,
			match_score = $2,
			match_reasons = $3,
			match_attached_at = $4
		 WHERE id = $5 AND user_id = $6`,
		applicationID, score, reasonsJSON, at, emailID, userID,
	)
	return err
}
