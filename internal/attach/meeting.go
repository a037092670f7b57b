package attach

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Meeting providers, ordered by preference: a native join link beats a
// calendar page.
const (
	providerGoogleMeet      = "google_meet"
	providerZoom            = "zoom"
	providerTeams           = "teams"
	providerWebex           = "webex"
	providerGoogleCalendar  = "google_calendar"
	providerOutlookCalendar = "outlook_calendar"
	providerOther           = "other"
)

// invite is a meeting link found in a message.
type invite struct {
	URL      string
	Provider string
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)
var trailingPunct = regexp.MustCompile(`[)\],.!?;:'"]+$`)

// cleanURL trims punctuation that emails wrap around links and validates
// the result. Returns "" for anything unusable.
func cleanURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = trailingPunct.ReplaceAllString(s, "")
	s = strings.Trim(s, "<>")
	if !strings.HasPrefix(strings.ToLower(s), "http://") &&
		!strings.HasPrefix(strings.ToLower(s), "https://") {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return u.String()
}

func extractURLs(text string) []string {
	hits := urlPattern.FindAllString(text, -1)
	seen := make(map[string]bool)
	var out []string
	for _, h := range hits {
		u := cleanURL(h)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func isJunkURL(rawURL string) bool {
	u := strings.ToLower(rawURL)
	for _, marker := range []string{
		"unsubscribe", "email-preferences", "utm_", "trk=",
		"tracking", "doubleclick", "click", "safeunsubscribe",
	} {
		if strings.Contains(u, marker) {
			return true
		}
	}
	return false
}

func meetingProvider(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return providerOther
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "meet.google.com"):
		return providerGoogleMeet
	case strings.Contains(host, "zoom.us"):
		return providerZoom
	case strings.Contains(host, "teams.microsoft.com"):
		return providerTeams
	case strings.Contains(host, "webex.com"):
		return providerWebex
	case strings.Contains(host, "calendar.google.com"):
		return providerGoogleCalendar
	case strings.Contains(host, "outlook.office.com"), strings.Contains(host, "outlook.live.com"):
		return providerOutlookCalendar
	}
	return providerOther
}

// providerRank orders invite URLs: native join links first, then
// calendar pages, then anything else.
func providerRank(rawURL string) int {
	switch meetingProvider(rawURL) {
	case providerGoogleMeet:
		return 100
	case providerZoom:
		return 95
	case providerTeams:
		return 90
	case providerWebex:
		return 85
	case providerGoogleCalendar:
		return 60
	case providerOutlookCalendar:
		return 55
	}
	return 10
}

var knownMeetingHost = regexp.MustCompile(`(?i)meet\.google\.com|zoom\.us|teams\.microsoft\.com|webex\.com|calendar\.google\.com|outlook\.(office|live)\.com`)

// extractInvite finds the best meeting/calendar link in a message body
// plus subject, or nil when none survives the junk filter.
func extractInvite(body, subject string) *invite {
	urls := extractURLs(body + "\n" + subject)
	if len(urls) == 0 {
		return nil
	}

	var candidates []string
	for _, u := range urls {
		if knownMeetingHost.MatchString(u) {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		candidates = urls
	}

	best := ""
	bestRank := -1
	for _, u := range candidates {
		if isJunkURL(u) {
			continue
		}
		if r := providerRank(u); r > bestRank {
			bestRank = r
			best = u
		}
	}
	if best == "" {
		return nil
	}
	return &invite{URL: best, Provider: meetingProvider(best)}
}

// interviewTimeFromURL pulls a start time out of known calendar/meeting
// URL parameter conventions. Meet links carry no time; they return nil.
func interviewTimeFromURL(rawURL string) *time.Time {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	q := u.Query()

	switch {
	case strings.Contains(host, "calendar.google.com"):
		// dates=20250115T210000Z/20250115T220000Z
		dates := q.Get("dates")
		if dates == "" {
			return nil
		}
		start := strings.SplitN(dates, "/", 2)[0]
		return parseCalendarStamp(start)
	case strings.Contains(host, "outlook.office.com"), strings.Contains(host, "outlook.live.com"):
		start := q.Get("startdt")
		if start == "" {
			start = q.Get("start")
		}
		return parseRFC3339(start)
	case strings.Contains(host, "zoom.us"):
		return parseRFC3339(q.Get("startTime"))
	case strings.Contains(host, "teams.microsoft.com"):
		return parseRFC3339(q.Get("meetingTime"))
	}
	return nil
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func parseCalendarStamp(s string) *time.Time {
	s = strings.TrimSuffix(s, "Z")
	t, err := time.Parse("20060102T150405", s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

var (
	invitationDate = regexp.MustCompile(`(?i)Date:\s*(?:[A-Za-z]+,\s*)?([A-Za-z]+)\s+(\d{1,2})`)
	invitationTime = regexp.MustCompile(`(?i)Time:\s*(\d{1,2}):(\d{2})\s*(AM|PM)`)
)

// interviewTimeFromText is the free-text fallback for invitation bodies
// that spell out "Date: Monday, January 19 / Time: 1:30 PM". Dates with
// no year are assumed upcoming; a date already well past bumps a year.
func interviewTimeFromText(text string, now time.Time) *time.Time {
	dm := invitationDate.FindStringSubmatch(text)
	tm := invitationTime.FindStringSubmatch(text)
	if dm == nil || tm == nil {
		return nil
	}

	month := parseMonth(dm[1])
	if month == 0 {
		return nil
	}
	day := atoiSafe(dm[2])
	hour := atoiSafe(tm[1]) % 12
	minute := atoiSafe(tm[2])
	if strings.EqualFold(tm[3], "PM") {
		hour += 12
	}

	t := time.Date(now.Year(), month, day, hour, minute, 0, 0, time.UTC)
	if t.Before(now.Add(-24 * time.Hour)) {
		t = t.AddDate(1, 0, 0)
	}
	return &t
}

func parseMonth(name string) time.Month {
	for m := time.January; m <= time.December; m++ {
		full := m.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return m
		}
	}
	return 0
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
