package email

import (
	"testing"

	"github.com/jobwatch/jobwatch/internal/models"
)

func TestDeriveFields_ATSSender(t *testing.T) {
	s := NewScorer(60)
	m := models.InboundEmail{
		FromEmail: "Acme Recruiting <noreply@mail.greenhouse.io>",
		Subject:   "Your application for Software Engineer at Acme",
		RawBody:   "Thank you for applying.",
	}

	f := s.DeriveFields(m)
	if f.Company != "Acme" {
		t.Errorf("company = %q, want Acme", f.Company)
	}
	if f.Role != "Software Engineer" {
		t.Errorf("role = %q, want Software Engineer", f.Role)
	}
	if f.Portal != "ATS" {
		t.Errorf("portal = %q, want ATS", f.Portal)
	}
}

func TestDeriveFields_ATSVendorFallback(t *testing.T) {
	s := NewScorer(60)
	m := models.InboundEmail{
		FromEmail: "noreply@hire.lever.co",
		Subject:   "application received",
		RawBody:   "",
	}

	f := s.DeriveFields(m)
	if f.Company != "Lever" {
		t.Errorf("company = %q, want Lever", f.Company)
	}
}

func TestDeriveFields_FreeProviderNeverBecomesCompany(t *testing.T) {
	s := NewScorer(60)
	m := models.InboundEmail{
		FromEmail: "Jordan Smith <jordan.smith@gmail.com>",
		Subject:   "following up on our chat about the role",
		RawBody:   "",
	}

	f := s.DeriveFields(m)
	if f.Company != "Unknown" {
		t.Errorf("company = %q, want Unknown", f.Company)
	}
	if f.Portal != "Email" {
		t.Errorf("portal = %q, want Email", f.Portal)
	}
}

func TestDeriveCompany_CorporateDomain(t *testing.T) {
	got := deriveCompany("recruiting@spotify.com", "Interview availability")
	if got != "Spotify" {
		t.Errorf("company = %q, want Spotify", got)
	}

	got = deriveCompany("talent@jobs.bigco.co.uk", "Next steps")
	if got != "Bigco" {
		t.Errorf("company = %q, want Bigco", got)
	}
}

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		company string
		want    string
	}{
		{"application for at", "Your application for Product Manager at Acme", "Acme", "Product Manager"},
		{"interview for", "Interview for Senior Backend Engineer", "", "Senior Backend Engineer"},
		{"received colon", "Application received: Data Analyst", "", "Data Analyst"},
		{"reply prefix stripped", "Re: Interview for Staff Engineer", "", "Staff Engineer"},
		{"req id stripped", "Your application for Platform Engineer (Req ID: R-12345)", "", "Platform Engineer"},
		{"acronym kept", "Interview for SRE", "", "SRE"},
		{"no candidate", "Quick question", "", "Role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveRole(tt.subject, tt.company, "Role"); got != tt.want {
				t.Errorf("deriveRole(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestRefineRole_KeepsCurrentWhenNoCandidate(t *testing.T) {
	got := RefineRole("Checking in", "Acme", "Product Manager")
	if got != "Product Manager" {
		t.Errorf("RefineRole = %q, want Product Manager", got)
	}

	got = RefineRole("Interview for Engineering Manager", "Acme", "Role")
	if got != "Engineering Manager" {
		t.Errorf("RefineRole = %q, want Engineering Manager", got)
	}
}

func TestRootDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"spotify.com", "spotify.com"},
		{"mail.spotify.com", "spotify.com"},
		{"jobs.bigco.co.uk", "bigco.co.uk"},
		{"hire.lever.co", "lever.co"},
	}
	for _, tt := range tests {
		if got := rootDomain(tt.in); got != tt.want {
			t.Errorf("rootDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
