package fetch

import (
	"context"
	"io"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"

// TokenSource refreshes an OAuth access token for a user. Token issuance
// and storage live elsewhere; the scanner only consumes tokens for
// targets that require an authenticated fetch.
type TokenSource interface {
	Refresh(ctx context.Context, userID string) (accessToken string, expiresAt time.Time, err error)
}

// Result is a fetched page. A non-2xx response is not an error: OK is
// false but the body is still returned and processed.
type Result struct {
	OK          bool
	StatusCode  int
	ContentType string
	HTML        string
}

// Fetcher GETs pages with a bounded timeout and a browser-like request
// profile. Some ATS portals serve bot traffic an empty shell otherwise.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose requests time out after timeout.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch GETs rawURL following redirects. bearer is optional; when set it
// is sent as an Authorization header. Timeouts and transport errors are
// returned as errors; HTTP error statuses are not.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, bearer string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Result{
		OK:          resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        string(body),
	}, nil
}
