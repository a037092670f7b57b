package scan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jobwatch/jobwatch/internal/fetch"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/status"
)

// Result is returned from a completed scan.
type Result struct {
	Status        string    `json:"status"`
	PrevStatus    string    `json:"prev_status"`
	NextStatus    string    `json:"next_status"`
	StatusChanged bool      `json:"status_changed"`
	DriftDetected bool      `json:"drift_detected"`
	CheckedAt     time.Time `json:"checked_at"`
	Source        string    `json:"source"`
}

// Executor runs one scan end to end: fetch, extract, fingerprint, diff,
// infer, persist, audit. Callers hold the scan lease; the executor does
// not take or check it.
type Executor struct {
	Apps   *repo.ApplicationRepo
	Events *repo.EventRepo
	Fetch  *fetch.Fetcher

	// Tokens is optional. When set, an access token is refreshed per
	// scan and sent with the fetch; portals behind OAuth need it.
	Tokens fetch.TokenSource

	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// eventPayload captures the raw signal behind a scan event.
type eventPayload struct {
	Source          string  `json:"source"`
	URL             string  `json:"url"`
	PrevStatus      string  `json:"prev_status_signal"`
	NextStatus      string  `json:"next_status_signal"`
	StatusChanged   bool    `json:"status_changed"`
	RawSignal       string  `json:"inferred_raw_signal"`
	MatchedPattern  string  `json:"matched_pattern,omitempty"`
	Confidence      float64 `json:"confidence"`
	PrevFingerprint string  `json:"prev_fingerprint,omitempty"`
	NextFingerprint string  `json:"next_fingerprint"`
	DriftDetected   bool    `json:"drift_detected"`
}

// Execute scans one application for its user. On fetch or token failure
// it persists the failure state and the backed-off next_scan_at before
// returning the error, so the application stays schedulable. Missing
// application or URL return ErrNotFound / ErrMissingURL without touching
// failure counters.
func (ex *Executor) Execute(ctx context.Context, applicationID, userID, source string) (*Result, error) {
	app, err := ex.Apps.Get(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrNotFound
	}
	if app.URL == "" {
		return nil, ErrMissingURL
	}

	now := time.Now()

	var bearer string
	if ex.Tokens != nil {
		tok, _, err := ex.Tokens.Refresh(ctx, userID)
		if err != nil {
			ferr := &FailureError{Code: CodeTokenRefreshFailed, Err: err}
			return nil, ex.fail(ctx, app, ferr, now)
		}
		bearer = tok
	}

	fetched, err := ex.Fetch.Fetch(ctx, app.URL, bearer)
	if err != nil {
		ferr := &FailureError{Code: CodeFetchFailed, Err: err}
		return nil, ex.fail(ctx, app, ferr, now)
	}

	// Non-2xx is tolerated: whatever body came back is still content.
	visible := fetch.VisibleText(fetched.HTML)
	normalized := status.Normalize(visible)
	fingerprint := fetch.Fingerprint(normalized)

	prevFingerprint := app.LastFingerprint
	driftDetected := prevFingerprint != "" && prevFingerprint != fingerprint

	inferred := status.Infer(visible, app.URL)
	prevStatus := status.Canonical(app.Status)
	nextStatus := status.Canonical(inferred.Signal)
	statusChanged := prevStatus != nextStatus

	err = ex.Apps.RecordScanSuccess(ctx, repo.ScanSuccess{
		ID:            applicationID,
		UserID:        userID,
		Fingerprint:   fingerprint,
		Status:        nextStatus,
		DriftDetected: driftDetected,
		StatusChanged: statusChanged,
		CheckedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	// At most one event per scan; a status change outranks plain drift.
	var kind string
	if statusChanged {
		kind = models.EventStatusChanged
	} else if driftDetected {
		kind = models.EventDriftDetected
	}
	if kind != "" {
		payload, _ := json.Marshal(eventPayload{
			Source:          source,
			URL:             app.URL,
			PrevStatus:      prevStatus,
			NextStatus:      nextStatus,
			StatusChanged:   statusChanged,
			RawSignal:       inferred.Signal,
			MatchedPattern:  inferred.Matched,
			Confidence:      inferred.Confidence,
			PrevFingerprint: prevFingerprint,
			NextFingerprint: fingerprint,
			DriftDetected:   driftDetected,
		})
		err = ex.Events.Append(ctx, models.ApplicationEvent{
			ApplicationID:   applicationID,
			UserID:          userID,
			Kind:            kind,
			Source:          source,
			PrevStatus:      prevStatus,
			NextStatus:      nextStatus,
			PrevFingerprint: prevFingerprint,
			NextFingerprint: fingerprint,
			Payload:         payload,
			CreatedAt:       now,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Status:        nextStatus,
		PrevStatus:    prevStatus,
		NextStatus:    nextStatus,
		StatusChanged: statusChanged,
		DriftDetected: driftDetected,
		CheckedAt:     now,
		Source:        source,
	}, nil
}

// fail persists the failure and computes the next retry time, then hands
// the original error back for the caller to surface or log.
func (ex *Executor) fail(ctx context.Context, app *models.Application, ferr *FailureError, now time.Time) error {
	failures := app.ConsecutiveFailures + 1
	nextScanAt := now.Add(Backoff(ex.BackoffBase, ex.BackoffCap, failures))

	if err := ex.Apps.RecordScanFailure(ctx, app.ID, app.UserID, failures,
		ferr.Code, ferr.Err.Error(), nextScanAt, now); err != nil {
		// Persisting the failure failed too; the fetch error stays primary.
		return ferr
	}
	return ferr
}
