package models

import (
	"encoding/json"
	"time"
)

// Event kinds written to application_events.
const (
	EventStatusChanged  = "status_changed"
	EventDriftDetected  = "drift_detected"
	EventEmailAttached  = "email_attached"
	EventStatusPromoted = "status_promoted"
)

// Event sources.
const (
	SourceManual     = "manual"
	SourceBackground = "background"
	SourceEmail      = "email"
)

// ApplicationEvent is one append-only audit log row. EmailID is set for
// email_attached and status_promoted events and is the idempotency key:
// at most one event exists per (application, email, kind).
type ApplicationEvent struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	UserID        string `json:"user_id"`
	Kind          string `json:"kind"`
	Source        string `json:"source"`

	PrevStatus      string `json:"prev_status,omitempty"`
	NextStatus      string `json:"next_status,omitempty"`
	PrevFingerprint string `json:"prev_fingerprint,omitempty"`
	NextFingerprint string `json:"next_fingerprint,omitempty"`
	EmailID         string `json:"email_id,omitempty"`

	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
