package status

import (
	"net/url"
	"strings"
)

// forceParam is a debug query parameter on a monitored URL. When present
// its value is returned verbatim with full confidence, which makes
// deterministic fixtures possible without real page content.
const forceParam = "jw_force_status"

// Inference is the result of running the rule table over page text.
type Inference struct {
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Matched    string  `json:"matched,omitempty"`
}

// rule pairs a raw signal with the substrings that imply it. Rules are
// evaluated in order; the first pattern hit wins.
type rule struct {
	signal   string
	patterns []string
}

var rules = []rule{
	{"OFFER", []string{"we are excited to offer", "congratulations", "offer"}},
	{"INTERVIEW", []string{"schedule an interview", "interview", "phone screen", "onsite", "on-site"}},
	{"UNDER_REVIEW", []string{"under review", "in review", "reviewing your application"}},
	{"SUBMITTED", []string{"application submitted", "thank you for applying", "received your application"}},
	{"REJECTED", []string{"not selected", "not moving forward", "regret to inform", "unfortunately"}},
	{"CLOSED", []string{"position closed", "role has been filled", "no longer accepting applications"}},
}

// Normalize collapses whitespace and lower-cases s. Fingerprints and
// pattern matching both run over this form.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Infer maps visible page text to a raw status signal. rawURL is only
// consulted for the debug override. Pure; never fails.
func Infer(visibleText, rawURL string) Inference {
	if rawURL != "" && strings.Contains(rawURL, forceParam+"=") {
		if u, err := url.Parse(rawURL); err == nil {
			if forced := strings.TrimSpace(u.Query().Get(forceParam)); forced != "" {
				return Inference{Signal: forced, Confidence: 1.0, Matched: "dev_override"}
			}
		}
	}

	text := Normalize(visibleText)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(text, p) {
				return Inference{Signal: r.signal, Confidence: 0.7, Matched: p}
			}
		}
	}
	return Inference{Signal: "UNKNOWN", Confidence: 0.2}
}
