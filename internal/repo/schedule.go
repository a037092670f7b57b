package repo

import (
	"context"
	"database/sql"

	"github.com/jobwatch/jobwatch/internal/models"
)

// ScheduleRepo persists per-user attach schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

// ListEnabled returns all enabled schedules (for the cron runner).
func (r *ScheduleRepo) ListEnabled(ctx context.Context) ([]models.AttachSchedule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, cron_expr, enabled, created_at
		 FROM attach_schedules
		 WHERE enabled = true
		 ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AttachSchedule
	for rows.Next() {
		var s models.AttachSchedule
		if err := rows.Scan(&s.ID, &s.UserID, &s.CronExpr, &s.Enabled, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListByUser returns a user's schedules, most recent first.
func (r *ScheduleRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.AttachSchedule, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, cron_expr, enabled, created_at
		 FROM attach_schedules
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AttachSchedule
	for rows.Next() {
		var s models.AttachSchedule
		if err := rows.Scan(&s.ID, &s.UserID, &s.CronExpr, &s.Enabled, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Create inserts a new schedule and returns it with id set.
func (r *ScheduleRepo) Create(ctx context.Context, userID, cronExpr string, enabled bool) (*models.AttachSchedule, error) {
	s := &models.AttachSchedule{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO attach_schedules (user_id, cron_expr, enabled)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, cron_expr, enabled, created_at`,
		userID, cronExpr, enabled,
	).Scan(&s.ID, &s.UserID, &s.CronExpr, &s.Enabled, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a schedule owned by the user.
func (r *ScheduleRepo) Delete(ctx context.Context, id int, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM attach_schedules WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
