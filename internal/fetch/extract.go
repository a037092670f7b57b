package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VisibleText approximates what a reader would see on the page: markup
// is parsed, script/style/noscript subtrees dropped, and the remaining
// text nodes concatenated. Falls back to the raw input when the HTML
// cannot be parsed.
func VisibleText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// Fingerprint is the sha256 hex digest of s. Scans compare fingerprints
// of normalized visible text to detect content drift.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
