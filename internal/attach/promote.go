package attach

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jobwatch/jobwatch/internal/email"
	"github.com/jobwatch/jobwatch/internal/models"
	"github.com/jobwatch/jobwatch/internal/repo"
	"github.com/jobwatch/jobwatch/internal/status"
)

type promotedPayload struct {
	PrevStatus     string `json:"prev_status"`
	NextStatus     string `json:"next_status"`
	InboundEmailID string `json:"inbound_email_id"`
	InferredStatus string `json:"inferred_status"`
}

// promote moves an application forward from an email signal: status only
// up in rank, Rejected terminal for both status and metadata, interview
// link/time promoted deterministically (better provider, or strictly
// earlier upcoming time). Returns whether anything changed.
func (p *Pipeline) promote(ctx context.Context, userID, applicationID string, e models.InboundEmail) (bool, error) {
	app, err := p.Apps.Get(ctx, applicationID, userID)
	if err != nil {
		return false, err
	}
	if app == nil {
		return false, nil
	}

	current := status.Canonical(app.Status)
	if current == models.StatusRejected {
		return false, nil
	}

	inferred := email.ClassifyStatus(e)

	changed := false
	statusPromoted := false
	nextStatus := current
	if models.StatusRank(inferred) > models.StatusRank(current) {
		nextStatus = inferred
		statusPromoted = true
		changed = true
	}

	nextRole := email.RefineRole(e.Subject, app.Company, app.Role)
	if nextRole != app.Role {
		changed = true
	}

	now := time.Now()

	nextInterviewAt := app.NextInterviewAt
	nextInterviewLink := app.NextInterviewLink
	nextInterviewSource := app.NextInterviewSource

	if inv := extractInvite(e.RawBody, e.Subject); inv != nil {
		interviewAt := interviewTimeFromURL(inv.URL)
		if interviewAt == nil {
			interviewAt = interviewTimeFromText(e.RawBody, now)
		}

		if promoteInterview(app, inv.URL, interviewAt) {
			nextInterviewLink = inv.URL
			nextInterviewSource = inv.Provider
			if interviewAt != nil {
				nextInterviewAt = interviewAt
			}
			changed = true
		}
	}

	if !changed {
		return false, nil
	}

	err = p.Apps.ApplyPromotion(ctx, repo.Promotion{
		ID:                  applicationID,
		UserID:              userID,
		Status:              nextStatus,
		Role:                nextRole,
		NextInterviewAt:     nextInterviewAt,
		NextInterviewLink:   nextInterviewLink,
		NextInterviewSource: nextInterviewSource,
		Now:                 now,
	})
	if err != nil {
		return false, err
	}

	if statusPromoted {
		exists, err := p.Events.HasEmailEvent(ctx, applicationID, e.ID, models.EventStatusPromoted)
		if err != nil {
			return true, err
		}
		if !exists {
			payload, _ := json.Marshal(promotedPayload{
				PrevStatus:     current,
				NextStatus:     nextStatus,
				InboundEmailID: e.ID,
				InferredStatus: inferred,
			})
			err = p.Events.Append(ctx, models.ApplicationEvent{
				ApplicationID: applicationID,
				UserID:        userID,
				Kind:          models.EventStatusPromoted,
				Source:        models.SourceEmail,
				PrevStatus:    current,
				NextStatus:    nextStatus,
				EmailID:       e.ID,
				Payload:       payload,
				CreatedAt:     now,
			})
			if err != nil {
				return true, err
			}
		}
	}

	return true, nil
}

// promoteInterview decides whether incoming meeting metadata replaces
// what is stored: fill in blanks, prefer a higher-ranked provider, and
// always keep the soonest upcoming interview time.
func promoteInterview(app *models.Application, inviteURL string, interviewAt *time.Time) bool {
	if app.NextInterviewLink != "" && inviteURL != "" {
		if providerRank(inviteURL) > providerRank(app.NextInterviewLink) {
			return true
		}
	}

	if app.NextInterviewLink == "" && inviteURL != "" {
		return true
	}
	if app.NextInterviewAt == nil && interviewAt != nil {
		return true
	}

	if app.NextInterviewAt != nil && interviewAt != nil {
		if interviewAt.Before(*app.NextInterviewAt) {
			return true
		}
		if interviewAt.Equal(*app.NextInterviewAt) && app.NextInterviewLink == "" && inviteURL != "" {
			return true
		}
	}

	return false
}
