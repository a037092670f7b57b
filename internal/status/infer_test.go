package status

import (
	"testing"

	"github.com/jobwatch/jobwatch/internal/models"
)

func TestInfer_RuleTable(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		signal string
	}{
		{"offer phrase", "We are excited to offer you the position", "OFFER"},
		{"congratulations", "Congratulations! Next steps inside.", "OFFER"},
		{"interview scheduling", "Please schedule an interview with our team", "INTERVIEW"},
		{"phone screen", "Your phone screen is confirmed", "INTERVIEW"},
		{"under review", "Your application is under review", "UNDER_REVIEW"},
		{"reviewing", "We are reviewing your application now", "UNDER_REVIEW"},
		{"submitted", "Application submitted successfully", "SUBMITTED"},
		{"thanks for applying", "Thank you for applying to Acme", "SUBMITTED"},
		{"rejected", "We regret to inform you", "REJECTED"},
		{"not moving forward", "we are not moving forward with your candidacy", "REJECTED"},
		{"closed", "This position closed on Friday", "CLOSED"},
		{"filled", "the role has been filled", "CLOSED"},
		{"no match", "Welcome to our careers portal", "UNKNOWN"},
		{"empty", "", "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.text, "")
			if got.Signal != tt.signal {
				t.Errorf("Infer(%q) signal = %q, want %q", tt.text, got.Signal, tt.signal)
			}
		})
	}
}

func TestInfer_FirstRuleWins(t *testing.T) {
	// Text containing both offer and rejection language resolves by rule
	// order, with OFFER evaluated first.
	got := Infer("congratulations, unfortunately we must reschedule", "")
	if got.Signal != "OFFER" {
		t.Errorf("signal = %q, want OFFER", got.Signal)
	}
}

func TestInfer_Confidence(t *testing.T) {
	if got := Infer("interview", ""); got.Confidence != 0.7 {
		t.Errorf("matched confidence = %v, want 0.7", got.Confidence)
	}
	if got := Infer("nothing relevant", ""); got.Confidence != 0.2 {
		t.Errorf("unknown confidence = %v, want 0.2", got.Confidence)
	}
}

func TestInfer_ForceOverride(t *testing.T) {
	got := Infer("we regret to inform you", "https://jobs.example.com/status?jw_force_status=OFFER")
	if got.Signal != "OFFER" {
		t.Errorf("signal = %q, want OFFER", got.Signal)
	}
	if got.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", got.Confidence)
	}
	if got.Matched != "dev_override" {
		t.Errorf("matched = %q, want dev_override", got.Matched)
	}

	// Empty override value falls through to the rule table.
	got = Infer("we regret to inform you", "https://jobs.example.com/status?jw_force_status=")
	if got.Signal != "REJECTED" {
		t.Errorf("signal = %q, want REJECTED", got.Signal)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  Under\n\tREVIEW   now ")
	if got != "under review now" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", models.StatusApplied},
		{"UNKNOWN", models.StatusApplied},
		{"SUBMITTED", models.StatusApplied},
		{"applied", models.StatusApplied},
		{"UNDER_REVIEW", models.StatusUnderReview},
		{"in review", models.StatusUnderReview},
		{"INTERVIEW", models.StatusInterview},
		{"phone screen", models.StatusInterview},
		{"OFFER", models.StatusOffer},
		{"REJECTED", models.StatusRejected},
		{"CLOSED", models.StatusRejected},
		{"denied", models.StatusRejected},
		{"total nonsense", models.StatusApplied},
	}
	for _, tt := range tests {
		if got := Canonical(tt.raw); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestStatusRank_Ordering(t *testing.T) {
	order := []string{
		models.StatusApplied,
		models.StatusUnderReview,
		models.StatusInterview,
		models.StatusOffer,
		models.StatusRejected,
	}
	for i := 1; i < len(order); i++ {
		if models.StatusRank(order[i-1]) >= models.StatusRank(order[i]) {
			t.Errorf("rank(%s)=%d not below rank(%s)=%d",
				order[i-1], models.StatusRank(order[i-1]), order[i], models.StatusRank(order[i]))
		}
	}
}
