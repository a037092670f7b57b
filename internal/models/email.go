package models

import "time"

// InboundEmail is one ingested message. Ingestion creates rows; only the
// attach pipeline mutates the match_* fields, idempotently per email id.
type InboundEmail struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Source     string    `json:"source"` // gmail, manual
	FromEmail  string    `json:"from_email"`
	Subject    string    `json:"subject"`
	RawBody    string    `json:"raw_body"`
	ReceivedAt time.Time `json:"received_at"`

	MatchScore           *int       `json:"match_score,omitempty"`
	MatchReasons         []string   `json:"match_reasons,omitempty"`
	MatchedApplicationID string     `json:"matched_application_id,omitempty"`
	MatchAttachedAt      *time.Time `json:"match_attached_at,omitempty"`
}
