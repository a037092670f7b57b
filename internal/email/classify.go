package email

import (
	"strings"

	"github.com/jobwatch/jobwatch/internal/models"
)

var rejectionPhrases = []string{
	"rejected",
	"not selected",
	"we will not be moving forward",
	"declined",
	"unsuccessful",
	"regret to inform",
}

var interviewPhrases = []string{
	"interview",
	"phone screen",
	"technical screen",
	"onsite",
	"on-site",
}

// ClassifyStatus maps a message to a canonical status for promotion.
// The marketing veto runs first so a discount "offer" can never classify
// as Offer; anything vetoed or unmatched stays Applied, the rank floor.
func ClassifyStatus(m models.InboundEmail) string {
	hay := strings.ToLower(m.FromEmail + "\n" + m.Subject + "\n" + m.RawBody)

	jobIntent := containsAny(hay, jobIntentTerms) || containsAny(hay, atsHints)
	if !jobIntent && containsAny(hay, marketingTerms) {
		return models.StatusApplied
	}

	if containsAny(hay, rejectionPhrases) {
		return models.StatusRejected
	}

	hasOfferWord := strings.Contains(hay, "offer")
	hasOfferContext := containsAny(hay, offerContextTerms)
	if (hasOfferWord && hasOfferContext) ||
		strings.Contains(hay, "we are pleased to offer") ||
		strings.Contains(hay, "we are excited to offer") {
		return models.StatusOffer
	}

	if containsAny(hay, interviewPhrases) {
		return models.StatusInterview
	}

	return models.StatusApplied
}
