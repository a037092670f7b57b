// Package scheduler drives the background work: a tick loop dispatching
// due scans through a bounded worker pool, and a cron runner for
// per-user attach schedules.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jobwatch/jobwatch/internal/lease"
	"github.com/jobwatch/jobwatch/internal/metrics"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/scan"
)

// Config tunes the dispatcher. Zero values fall back to the defaults.
type Config struct {
	Tick           time.Duration // default 60s
	BatchSize      int           // default 5
	MaxConcurrency int           // default 2
	LeaseTTL       time.Duration // default 120s
	Enabled        bool
}

func (c Config) withDefaults() Config {
	if c.Tick <= 0 {
		c.Tick = 60 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 2
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = 120 * time.Second
	}
	return c
}

// Dispatcher selects due applications each tick and runs scans under
// per-application leases. Selection is ordered by due time; completion
// order is whatever the pool yields.
type Dispatcher struct {
	Apps     *repo.ApplicationRepo
	Leases   *lease.Manager
	Executor *scan.Executor

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDispatcher returns a Dispatcher over the given store and executor.
func NewDispatcher(apps *repo.ApplicationRepo, leases *lease.Manager, executor *scan.Executor) *Dispatcher {
	return &Dispatcher{
		Apps:     apps,
		Leases:   leases,
		Executor: executor,
		inFlight: make(map[string]struct{}),
	}
}

// Start begins ticking (one tick runs immediately) and returns a stop
// function. Stopping halts future ticks; scans already in flight drain
// on their own and are not interrupted.
func (d *Dispatcher) Start(cfg Config) func() {
	cfg = cfg.withDefaults()

	if !cfg.Enabled {
		log.Printf("scheduler: background scans disabled (set ENABLE_BACKGROUND_SCANS=true)")
		return func() {}
	}

	log.Printf("scheduler: enabled tick=%s batch=%d concurrency=%d lease_ttl=%s",
		cfg.Tick, cfg.BatchSize, cfg.MaxConcurrency, cfg.LeaseTTL)

	sem := make(chan struct{}, cfg.MaxConcurrency)
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Tick)
		defer ticker.Stop()

		d.tick(cfg, sem, &wg)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				d.tick(cfg, sem, &wg)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// tick selects one batch of due, unleased, not-already-running
// applications and hands each to a worker slot.
func (d *Dispatcher) tick(cfg Config, sem chan struct{}, wg *sync.WaitGroup) {
	ctx := context.Background()

	dueIDs, err := d.Apps.SelectDue(ctx, time.Now(), cfg.BatchSize)
	if err != nil {
		log.Printf("scheduler: select due: %v", err)
		return
	}

	for _, id := range dueIDs {
		if !d.track(id) {
			continue // already dispatched by an overlapping tick
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			d.runOne(ctx, cfg, id)
		}(id)
	}
}

// runOne scans a single application under its lease. Lease contention is
// not an error; executor errors are logged and the tick carries on.
func (d *Dispatcher) runOne(ctx context.Context, cfg Config, id string) {
	defer d.untrack(id)

	l, acquired, err := d.Leases.Acquire(ctx, id, cfg.LeaseTTL)
	if err != nil {
		log.Printf("scheduler: acquire lease app=%s: %v", id, err)
		return
	}
	if !acquired {
		return // lost the race to another instance
	}
	defer func() {
		if _, err := d.Leases.Release(ctx, id, l.Token); err != nil {
			log.Printf("scheduler: release lease app=%s: %v", id, err)
		}
	}()

	userID, err := d.Apps.OwnerOf(ctx, id)
	if err != nil || userID == "" {
		log.Printf("scheduler: missing owner app=%s err=%v", id, err)
		return
	}

	metrics.IncScansRunning()
	defer metrics.DecScansRunning()

	result, err := d.Executor.Execute(ctx, id, userID, models.SourceBackground)
	if err != nil {
		metrics.IncScansTotal("error")
		log.Printf("scheduler: scan app=%s: %v", id, err)
		return
	}

	metrics.IncScansTotal("completed")
	switch {
	case result.StatusChanged:
		log.Printf("scheduler: status app=%s %s -> %s", id, result.PrevStatus, result.NextStatus)
	case result.DriftDetected:
		log.Printf("scheduler: drift app=%s status=%s", id, result.Status)
	default:
		log.Printf("scheduler: no-change app=%s status=%s", id, result.Status)
	}
}

func (d *Dispatcher) track(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[id]; ok {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

func (d *Dispatcher) untrack(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, id)
}
