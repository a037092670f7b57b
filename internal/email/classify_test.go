package email

import (
	"testing"

	"github.com/jobwatch/jobwatch/internal/models"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		m    models.InboundEmail
		want string
	}{
		{
			"rejection",
			models.InboundEmail{Subject: "Your application", RawBody: "We regret to inform you"},
			models.StatusRejected,
		},
		{
			"rejection beats offer wording",
			models.InboundEmail{Subject: "Your application", RawBody: "We cannot extend an offer; you were not selected"},
			models.StatusRejected,
		},
		{
			"offer with context",
			models.InboundEmail{Subject: "Offer letter", RawBody: "Your compensation and start date are attached"},
			models.StatusOffer,
		},
		{
			"interview",
			models.InboundEmail{Subject: "Phone screen", RawBody: "Please pick a slot for your phone screen"},
			models.StatusInterview,
		},
		{
			"marketing offer vetoed",
			models.InboundEmail{Subject: "Special offer", RawBody: "Unsubscribe for fewer deals"},
			models.StatusApplied,
		},
		{
			"plain confirmation",
			models.InboundEmail{Subject: "Application received", RawBody: "Thanks, we got it"},
			models.StatusApplied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.m); got != tt.want {
				t.Errorf("ClassifyStatus = %q, want %q", got, tt.want)
			}
		})
	}
}
