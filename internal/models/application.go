package models

import "time"

// Canonical application statuses. Raw page/email signals are normalized
// into this fixed vocabulary; see status.Canonical.
const (
	StatusApplied     = "Applied"
	StatusUnderReview = "Under Review"
	StatusInterview   = "Interview"
	StatusOffer       = "Offer"
	StatusRejected    = "Rejected"
)

// StatusRank orders canonical statuses. Promotion only ever moves an
// application to a higher rank. Rejected ranks highest and is terminal.
func StatusRank(status string) int {
	switch status {
	case StatusRejected:
		return 100
	case StatusOffer:
		return 80
	case StatusInterview:
		return 60
	case StatusUnderReview:
		return 30
	default:
		return 10
	}
}

// Application is one monitored job application: a target URL plus the
// state the scanner maintains about it.
type Application struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Company string `json:"company"`
	Role    string `json:"role"`
	Portal  string `json:"portal"`
	URL     string `json:"url,omitempty"`
	Status  string `json:"status"`

	LastFingerprint       string     `json:"last_fingerprint,omitempty"`
	BaselineEstablishedAt *time.Time `json:"baseline_established_at,omitempty"`
	LastCheckedAt         *time.Time `json:"last_checked_at,omitempty"`
	LastDriftDetectedAt   *time.Time `json:"last_drift_detected_at,omitempty"`
	LastStatusChangeAt    *time.Time `json:"last_status_change_at,omitempty"`
	NextScanAt            *time.Time `json:"next_scan_at,omitempty"`

	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastErrorCode       string `json:"last_error_code,omitempty"`
	LastErrorMessage    string `json:"last_error_message,omitempty"`

	// Scan lease. Valid only while now < LockUntil; see lease.Manager.
	LockOwner string     `json:"-"`
	LockToken string     `json:"-"`
	LockUntil *time.Time `json:"-"`

	NextInterviewAt     *time.Time `json:"next_interview_at,omitempty"`
	NextInterviewLink   string     `json:"next_interview_link,omitempty"`
	NextInterviewSource string     `json:"next_interview_source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
