package models

import "time"

// AttachSchedule drives a periodic RunAttach for one user (cron-like).
type AttachSchedule struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	CronExpr  string    `json:"cron_expr"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}
