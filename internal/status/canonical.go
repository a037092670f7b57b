package status

import (
	"strings"

	"github.com/jobwatch/jobwatch/internal/models"
)

// Canonical maps a raw signal or stored status into the fixed vocabulary.
// Unknown and empty inputs map to Applied, the rank floor, so they can
// never regress an application.
func Canonical(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch s {
	case "", "unknown", "n/a", "na", "none", "-":
		return models.StatusApplied
	case "applied", "submitted", "application submitted":
		return models.StatusApplied
	case "under review", "under_review", "under-review", "review",
		"in review", "in_review", "in process", "in consideration", "in_consideration":
		return models.StatusUnderReview
	case "interview", "interviewing", "phone screen", "phone_screen",
		"screen", "onsite", "on-site":
		return models.StatusInterview
	case "offer", "offered":
		return models.StatusOffer
	case "rejected", "denied", "declined", "not selected",
		"no longer under consideration", "closed":
		return models.StatusRejected
	}

	return models.StatusApplied
}
