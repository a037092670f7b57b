// Package attach links scored inbound emails to applications and
// promotes status and interview metadata from them. Everything here is
// idempotent per message: re-running over the same inbox refreshes match
// fields without duplicating audit events.
package attach

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jobwatch/jobwatch/internal/email"
	"github.com/jobwatch/jobwatch/internal/metrics"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/repo"
)

// Summary counts one RunAttach pass.
type Summary struct {
	Scanned         int `json:"scanned"`
	Attached        int `json:"attached"`
	SkippedNonJob   int `json:"skipped_non_job"`
	SkippedLowScore int `json:"skipped_low_score"`
	Promoted        int `json:"promoted"`
}

// Pipeline wires the scorer to the store.
type Pipeline struct {
	Apps   *repo.ApplicationRepo
	Emails *repo.EmailRepo
	Events *repo.EventRepo
	Scorer *email.Scorer

	// PromoteThreshold gates status promotion; it sits above the
	// scorer's attach threshold (default 80).
	PromoteThreshold int
}

type attachedPayload struct {
	InboundEmailID string     `json:"inbound_email_id"`
	FromEmail      string     `json:"from_email"`
	Subject        string     `json:"subject"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	MatchScore     int        `json:"match_score"`
	MatchReasons   []string   `json:"match_reasons"`
}

// RunAttach processes up to limit unattached emails for a user, newest
// first. Stored scores are reused so a re-run does not re-rate history;
// the marketing veto and attach threshold both gate attachment.
func (p *Pipeline) RunAttach(ctx context.Context, userID string, limit int) (Summary, error) {
	if limit <= 0 {
		limit = 300
	}

	emails, err := p.Emails.ListUnattached(ctx, userID, limit)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, e := range emails {
		sum.Scanned++

		// Prefer the stored score when present; otherwise compute.
		var score int
		var reasons []string
		if e.MatchScore != nil {
			score = *e.MatchScore
			reasons = e.MatchReasons
		} else {
			res := p.Scorer.Score(e)
			score = res.Score
			reasons = res.Reasons
		}

		if score < p.Scorer.AttachThreshold {
			sum.SkippedLowScore++
			continue
		}
		if !p.Scorer.IsJobSignal(e) {
			sum.SkippedNonJob++
			continue
		}

		applicationID, err := p.getOrCreateApplication(ctx, userID, e)
		if err != nil {
			return sum, err
		}

		now := time.Now()

		exists, err := p.Events.HasEmailEvent(ctx, applicationID, e.ID, models.EventEmailAttached)
		if err != nil {
			return sum, err
		}
		if !exists {
			received := e.ReceivedAt
			payload, _ := json.Marshal(attachedPayload{
				InboundEmailID: e.ID,
				FromEmail:      e.FromEmail,
				Subject:        e.Subject,
				ReceivedAt:     &received,
				MatchScore:     score,
				MatchReasons:   reasons,
			})
			err = p.Events.Append(ctx, models.ApplicationEvent{
				ApplicationID: applicationID,
				UserID:        userID,
				Kind:          models.EventEmailAttached,
				Source:        models.SourceEmail,
				EmailID:       e.ID,
				Payload:       payload,
				CreatedAt:     now,
			})
			if err != nil {
				return sum, err
			}
			sum.Attached++
		}

		// Always refresh match fields, even when the event already
		// existed, so a re-score is reflected.
		if err := p.Emails.MarkAttached(ctx, e.ID, userID, applicationID, score, reasons, now); err != nil {
			return sum, err
		}

		if score >= p.PromoteThreshold {
			changed, err := p.promote(ctx, userID, applicationID, e)
			if err != nil {
				log.Printf("attach: promote email=%s app=%s: %v", e.ID, applicationID, err)
				continue
			}
			if changed {
				sum.Promoted++
			}
		}
	}

	// Counted here so HTTP-triggered and cron-triggered runs both show
	// up in the attach counters.
	metrics.AddAttachCounts(sum.Attached, sum.Promoted)
	return sum, nil
}

// getOrCreateApplication finds the application for (owner, company,
// role) case-insensitively or creates one with derived fields. The
// dedupe key is exactly that tuple; URL matching happens elsewhere.
func (p *Pipeline) getOrCreateApplication(ctx context.Context, userID string, e models.InboundEmail) (string, error) {
	fields := p.Scorer.DeriveFields(e)

	id, err := p.Apps.FindByCompanyRole(ctx, userID, fields.Company, fields.Role)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	return p.Apps.Create(ctx, userID, fields.Company, fields.Role, fields.Portal, "", nil)
}
