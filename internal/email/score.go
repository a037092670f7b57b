// Package email scores inbound messages for job relevance and derives
// conservative application fields from them. Scoring is an additive
// ordered rule list over lower-cased text; there is no ML anywhere.
package email

import (
	"strings"

	"github.com/jobwatch/jobwatch/internal/models"
)

// Reason labels recorded with scores. marketing_penalty doubles as a
// hard veto in IsJobSignal.
const (
	ReasonMarketingPenalty = "marketing_penalty"
)

var atsHints = []string{
	"greenhouse.io",
	"lever.co",
	"ashbyhq.com",
	"workday",
	"myworkday",
	"icims.com",
	"smartrecruiters.com",
	"jobvite.com",
	"successfactors",
	"taleo.net",
	"oraclecloud",
}

var jobIntentTerms = []string{
	"your application",
	"application received",
	"thank you for applying",
	"candidate",
	"recruiter",
	"talent acquisition",
	"hiring team",
	"position",
	"role",
	"job offer",
	"offer letter",
	"employment offer",
	"background check",
	"start date",
	"interview",
	"phone screen",
	"onsite",
	"on-site",
	"technical screen",
	"schedule your interview",
}

var marketingTerms = []string{
	"unsubscribe",
	"view in browser",
	"bonus points",
	"rewards",
	"membership",
	"coupon",
	"promo code",
	"percent off",
	"sale",
	"deal",
	"limited time",
	"ends tonight",
	"sweepstakes",
	"tickets",
	"ticket offer",
	"family 4 pack",
	"order #",
	"shipped",
	"delivery",
	"reservation",
}

var offerContextTerms = []string{
	"job offer",
	"offer letter",
	"employment offer",
	"compensation",
	"start date",
	"background check",
	"candidate",
	"position",
	"role",
	"application",
}

// ScoreResult is the scored relevance of one message.
type ScoreResult struct {
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	PortalGuess string   `json:"portal_guess"` // ATS or Email
}

// Scorer holds the attach threshold; everything else is fixed weights.
type Scorer struct {
	AttachThreshold int
}

// NewScorer returns a Scorer with the given attach threshold (default 60
// when <= 0).
func NewScorer(attachThreshold int) *Scorer {
	if attachThreshold <= 0 {
		attachThreshold = 60
	}
	return &Scorer{AttachThreshold: attachThreshold}
}

func containsAny(haystack string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

// Score rates a message 0-100 for job relevance. Weights are additive;
// bare "offer" language never scores without job context, and the
// marketing penalty only fires when no job intent is present at all, so
// an ATS email mentioning a discount is not punished.
func (s *Scorer) Score(m models.InboundEmail) ScoreResult {
	hay := strings.ToLower(m.FromEmail + "\n" + m.Subject + "\n" + m.RawBody)
	subject := strings.ToLower(m.Subject)
	from := strings.ToLower(m.FromEmail)

	score := 0
	var reasons []string
	add := func(pts int, label string) {
		score += pts
		reasons = append(reasons, label)
	}

	portal := "Email"
	if containsAny(hay, atsHints) {
		portal = "ATS"
		add(35, "ats_hint")
	}

	if strings.Contains(subject, "interview") {
		add(60, "subject_interview")
	}
	if strings.Contains(hay, "interview") {
		add(30, "body_interview")
	}

	// Meeting links carry interview intent even when HTML templates hide
	// the word "interview" from the plain text.
	if strings.Contains(hay, "meet.google.com/") {
		add(70, "meet_link")
	}
	if strings.Contains(hay, "zoom.us/") {
		add(70, "zoom_link")
	}
	if strings.Contains(hay, "teams.microsoft.com/") {
		add(70, "teams_link")
	}
	if strings.Contains(hay, "webex.com/") {
		add(70, "webex_link")
	}

	if strings.Contains(hay, "google meet") {
		add(25, "google_meet_phrase")
	}
	if strings.Contains(hay, "join zoom meeting") {
		add(25, "join_zoom_phrase")
	}
	if strings.Contains(hay, "video call link") {
		add(20, "video_call_link_phrase")
	}

	if strings.Contains(hay, "your application") {
		add(35, "application_context")
	}
	if strings.Contains(hay, "thank you for applying") || strings.Contains(hay, "application received") {
		add(35, "application_received")
	}

	if strings.Contains(hay, "we will not be moving forward") ||
		strings.Contains(hay, "not selected") ||
		strings.Contains(hay, "regret to inform") ||
		strings.Contains(hay, "unsuccessful") ||
		strings.Contains(hay, "rejected") {
		add(60, "body_rejection")
	}

	hasOfferWord := strings.Contains(hay, "offer")
	hasOfferContext := containsAny(hay, offerContextTerms)
	if hasOfferWord && hasOfferContext {
		add(70, "offer_with_job_context")
	} else if strings.Contains(subject, "offer") && hasOfferContext {
		add(55, "subject_offer_with_context")
	}

	if strings.Contains(from, "noreply") {
		add(5, "noreply_sender")
	}

	jobIntent := containsAny(hay, jobIntentTerms) || containsAny(hay, atsHints)
	if !jobIntent && containsAny(hay, marketingTerms) {
		add(-90, ReasonMarketingPenalty)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoreResult{Score: score, Reasons: reasons, PortalGuess: portal}
}

// IsJobSignal reports whether the message clears the attach threshold
// and did not trip the marketing veto. The veto is independent of the
// score: a penalized message never attaches.
func (s *Scorer) IsJobSignal(m models.InboundEmail) bool {
	res := s.Score(m)
	for _, r := range res.Reasons {
		if r == ReasonMarketingPenalty {
			return false
		}
	}
	return res.Score >= s.AttachThreshold
}
