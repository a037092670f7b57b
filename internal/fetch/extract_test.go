package fetch

import (
	"strings"
	"testing"
)

func TestVisibleText_DropsScriptsAndStyles(t *testing.T) {
	html := `<html><head>
		<style>body { color: red }</style>
		<script>var tracking = "xyz";</script>
	</head><body>
		<h1>Application Status</h1>
		<p>Your application is <b>under review</b>.</p>
		<noscript>Enable JS</noscript>
	</body></html>`

	text := VisibleText(html)
	for _, want := range []string{"Application Status", "under review"} {
		if !strings.Contains(text, want) {
			t.Errorf("VisibleText missing %q in %q", want, text)
		}
	}
	for _, junk := range []string{"tracking", "color: red", "Enable JS"} {
		if strings.Contains(text, junk) {
			t.Errorf("VisibleText leaked %q", junk)
		}
	}
}

func TestVisibleText_Empty(t *testing.T) {
	if got := VisibleText(""); got != "" {
		t.Errorf("VisibleText(\"\") = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("your application is under review")
	b := Fingerprint("your application is under review")
	c := Fingerprint("your application is under review now")

	if a != b {
		t.Error("same input produced different fingerprints")
	}
	if a == c {
		t.Error("different inputs produced the same fingerprint")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
