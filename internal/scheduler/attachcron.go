package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/robfig/cron/v3"
)

// RunAttachSchedules starts a cron runner that loads enabled attach
// schedules from the DB and runs runAttach(userID) at each schedule's
// cron time. It reloads schedules every 60 seconds to pick up edits.
// Blocks; run it in its own goroutine.
func RunAttachSchedules(scheduleRepo *repo.ScheduleRepo, runAttach func(userID string)) {
	c := cron.New()
	var mu sync.Mutex
	entryByID := make(map[int]cron.EntryID) // schedule ID -> cron entry

	syncSchedules := func() {
		mu.Lock()
		defer mu.Unlock()

		// Remove all current entries so we reflect the DB.
		for _, entryID := range entryByID {
			c.Remove(entryID)
		}
		entryByID = make(map[int]cron.EntryID)

		list, err := scheduleRepo.ListEnabled(context.Background())
		if err != nil {
			log.Printf("scheduler: list enabled attach schedules: %v", err)
			return
		}

		for _, s := range list {
			userID := s.UserID
			expr := s.CronExpr
			entryID, err := c.AddFunc(expr, func() { runAttach(userID) })
			if err != nil {
				log.Printf("scheduler: invalid cron_expr %q for schedule id=%d: %v", expr, s.ID, err)
				continue
			}
			entryByID[s.ID] = entryID
			log.Printf("scheduler: added attach schedule id=%d user=%s cron=%q", s.ID, userID, expr)
		}
	}

	// Initial load
	syncSchedules()
	c.Start()

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		syncSchedules()
	}
}
