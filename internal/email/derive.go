package email

import (
	"regexp"
	"strings"

	"github.com/jobwatch/jobwatch/internal/models"
)

// Fields are conservative application fields derived from a message.
// None of them are ever empty.
type Fields struct {
	Company string
	Role    string
	Portal  string
}

var freeProviders = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"ymail.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"live.com":       true,
	"icloud.com":     true,
	"me.com":         true,
	"aol.com":        true,
	"proton.me":      true,
	"protonmail.com": true,
	"comcast.net":    true,
}

var atsDomains = []string{
	"greenhouse.io",
	"mail.greenhouse.io",
	"boards.greenhouse.io",
	"lever.co",
	"hire.lever.co",
	"ashbyhq.com",
	"workday.com",
	"myworkday.com",
	"icims.com",
	"smartrecruiters.com",
	"jobvite.com",
	"successfactors.com",
	"oraclecloud.com",
	"taleo.net",
}

// DeriveFields derives {company, role, portal} from a message that
// already passed IsJobSignal. ATS senders carry the real company in the
// subject; free-mail senders must not become companies named "Gmail".
func (s *Scorer) DeriveFields(m models.InboundEmail) Fields {
	company := deriveCompany(m.FromEmail, m.Subject)
	if company == "" {
		company = "Unknown"
	}

	role := deriveRole(m.Subject, company, "Role")

	portal := "Email"
	if s.Score(m).PortalGuess == "ATS" {
		portal = "ATS"
	}

	return Fields{Company: company, Role: role, Portal: portal}
}

var angleAddr = regexp.MustCompile(`<([^>]+)>`)

func cleanAddress(from string) string {
	s := strings.TrimSpace(from)
	if m := angleAddr.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func domainOf(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at == -1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}

// rootDomain keeps the last two labels (spotify.com) with a crude
// allowance for co.uk style suffixes.
func rootDomain(domain string) string {
	parts := strings.FieldsFunc(domain, func(r rune) bool { return r == '.' })
	if len(parts) <= 2 {
		return strings.Join(parts, ".")
	}
	last2 := strings.Join(parts[len(parts)-2:], ".")
	if last2 == "co.uk" || last2 == "com.au" || last2 == "co.nz" {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return last2
}

func isATSDomain(domain string) bool {
	d := strings.ToLower(domain)
	for _, ats := range atsDomains {
		if d == ats || strings.HasSuffix(d, "."+ats) {
			return true
		}
	}
	return false
}

var wordBreaks = regexp.MustCompile(`[_-]+`)
var multiSpace = regexp.MustCompile(`\s+`)

func titleCaseCompany(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return ""
	}
	v = wordBreaks.ReplaceAllString(v, " ")
	v = multiSpace.ReplaceAllString(v, " ")
	words := strings.Split(v, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

var companySubjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bat\s+([A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*){0,4})\b`),
	regexp.MustCompile(`\bto\s+([A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*){0,4})\b`),
	regexp.MustCompile(`:\s*([A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*){0,4})\s*$`),
	regexp.MustCompile(`—\s*([A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*){0,4})\s*$`),
	regexp.MustCompile(`-\s*([A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*){0,4})\s*$`),
}

var genericCompany = regexp.MustCompile(`(?i)^(gmail|google|email|notification|update)$`)

func companyFromSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for _, re := range companySubjectPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			candidate := strings.TrimSpace(m[1])
			if candidate == "" || genericCompany.MatchString(candidate) {
				continue
			}
			return candidate
		}
	}
	return ""
}

func companyFromDomain(domain string) string {
	root := rootDomain(domain)
	if root == "" {
		return ""
	}
	left := strings.SplitN(root, ".", 2)[0]
	if len(left) <= 1 || left == "mail" || left == "notify" || left == "noreply" {
		return ""
	}
	return titleCaseCompany(left)
}

func deriveCompany(fromEmail, subject string) string {
	from := cleanAddress(fromEmail)
	dom := domainOf(from)

	// ATS senders: subject names the real company; vendor name is the
	// fallback, which beats calling the company "Greenhouse Mail".
	if isATSDomain(dom) {
		if co := companyFromSubject(subject); co != "" {
			return titleCaseCompany(co)
		}
		vendor := strings.SplitN(rootDomain(dom), ".", 2)[0]
		if vendor == "" {
			return "Unknown"
		}
		return titleCaseCompany(vendor)
	}

	if dom != "" && freeProviders[dom] {
		if co := companyFromSubject(subject); co != "" {
			return titleCaseCompany(co)
		}
		return "Unknown"
	}

	if co := companyFromDomain(dom); co != "" {
		return co
	}
	if co := companyFromSubject(subject); co != "" {
		return titleCaseCompany(co)
	}
	return "Unknown"
}

var (
	replyPrefix    = regexp.MustCompile(`(?i)^\s*(re|fw|fwd)\s*:\s*`)
	bracketPrefix  = regexp.MustCompile(`^\s*\[\s*[^\]]+\s*\]\s*`)
	reqJunkParen   = regexp.MustCompile(`(?i)\(\s*(req|requisition|job)\s*(id|#)?\s*[:#-]?\s*[A-Z0-9-]+\s*\)`)
	reqJunkBare    = regexp.MustCompile(`(?i)\b(req|requisition|job)\s*(id|#)?\s*[:#-]?\s*[A-Z0-9-]+\b`)
	dashNormalizer = regexp.MustCompile(`\s*[—–-]\s*`)
)

func stripPrefixes(s string) string {
	s = replyPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	s = bracketPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func stripReqJunk(s string) string {
	s = reqJunkParen.ReplaceAllString(s, "")
	s = reqJunkBare.ReplaceAllString(s, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

var keepUpper = map[string]bool{
	"UX": true, "UI": true, "QA": true, "SRE": true, "IT": true, "HR": true,
	"BI": true, "II": true, "III": true, "IV": true, "VP": true,
	"CFO": true, "CEO": true, "CTO": true,
}

var allCaps = regexp.MustCompile(`^[A-Z]{2,}$`)

func titleCaseRole(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, "_", " ")
	v = multiSpace.ReplaceAllString(v, " ")
	words := strings.Split(v, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		up := strings.ToUpper(w)
		if keepUpper[up] {
			words[i] = up
			continue
		}
		if allCaps.MatchString(w) {
			continue // already an acronym
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

var rolePatterns = []*regexp.Regexp{
	// "Interview for Product Manager" / "Offer for Senior PM"
	regexp.MustCompile(`(?i)\b(?:interview|phone\s*screen|onsite|on[- ]site|technical\s*screen|offer)\b\s*(?:invitation|invite|scheduled|request|requested|for|:)?\s*(?:for\s+)?(.+?)\s*$`),
	// "Next steps for Product Manager"
	regexp.MustCompile(`(?i)\bnext\s+steps\s+for\s+(.+?)\s*$`),
	// "Your application for Product Manager at Company"
	regexp.MustCompile(`(?i)\byour\s+application\s+for\s+(.+?)\s*(?:\bat\b|\(|—|$)`),
	// "Application received: Product Manager"
	regexp.MustCompile(`(?i)\bapplication\s+(?:received|submitted|confirmation|confirmed)\s*[:\-—]\s*(.+?)\s*$`),
	// "Thank you for applying — Product Manager"
	regexp.MustCompile(`(?i)\bthank\s+you\s+for\s+applying\b\s*[:\-—]\s*(.+?)\s*$`),
}

var trailingAt = regexp.MustCompile(`(?i)\s+at\s+.+$`)
var trailingRoleNoise = regexp.MustCompile(`(?i)\s*(?:role|position|opportunity)\s*$`)
var trailingStatusNoise = regexp.MustCompile(`(?i)\s*(?:application|applied|received|submitted|confirmation|update)\s*$`)
var endsBadWord = regexp.MustCompile(`(?i)\b(interview|application|candidate|recruit|recruiting|schedule|next\s+steps)\b\s*$`)

func roleCandidate(subject string) string {
	s := stripReqJunk(stripPrefixes(subject))
	if s == "" {
		return ""
	}
	s = dashNormalizer.ReplaceAllString(s, " — ")

	for _, re := range rolePatterns {
		if m := re.FindStringSubmatch(s); m != nil && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func cleanRole(candidate, company string) string {
	c := stripReqJunk(candidate)
	if c == "" {
		return ""
	}

	c = strings.TrimSpace(trailingAt.ReplaceAllString(c, ""))

	if company != "" {
		esc := regexp.QuoteMeta(strings.TrimSpace(company))
		if esc != "" {
			re := regexp.MustCompile(`(?i)\s*(?:—|-|:)\s*` + esc + `\s*$`)
			c = strings.TrimSpace(re.ReplaceAllString(c, ""))
		}
	}

	c = strings.TrimSpace(trailingRoleNoise.ReplaceAllString(c, ""))
	c = strings.TrimSpace(trailingStatusNoise.ReplaceAllString(c, ""))

	// Still looks like a sentence rather than a title.
	if len(c) > 80 || strings.ContainsAny(c, "!?") {
		return ""
	}
	if endsBadWord.MatchString(c) {
		return ""
	}

	return titleCaseRole(c)
}

// deriveRole extracts a role from the subject, or fallback when no
// confident candidate exists. Never returns "".
func deriveRole(subject, company, fallback string) string {
	if cleaned := cleanRole(roleCandidate(subject), company); cleaned != "" {
		return cleaned
	}
	if fb := strings.TrimSpace(fallback); fb != "" {
		return fb
	}
	return "Role"
}

// RefineRole exposes role derivation for promotion: given the current
// role as fallback, returns a cleaner title when the subject yields one.
func RefineRole(subject, company, currentRole string) string {
	return deriveRole(subject, company, currentRole)
}
