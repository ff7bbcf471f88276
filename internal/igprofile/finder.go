// Package igprofile discovers a venue's Instagram profile by scraping its
// website for profile links and @handle mentions.
package igprofile

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Status classifies a lookup outcome. Network failures are reported as
// StatusError with a reason, never as a Go error.
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Result is the outcome of one profile lookup.
type Result struct {
	URL    string
	Status Status
	Reason string
}

// Finder fetches a website and extracts a normalized profile URL.
type Finder interface {
	Find(ctx context.Context, websiteURL string) Result
}

// reservedSegments are Instagram system pages that look like handles in a
// path position but never are.
var reservedSegments = map[string]bool{
	"p":         true,
	"reel":      true,
	"reels":     true,
	"tv":        true,
	"stories":   true,
	"explore":   true,
	"accounts":  true,
	"about":     true,
	"legal":     true,
	"developer": true,
	"directory": true,
	"blog":      true,
	"help":      true,
	"press":     true,
	"api":       true,
	"web":       true,
}

var (
	// Anchor hrefs pointing at an Instagram profile.
	profileLinkRe = regexp.MustCompile(`(?i)https?://(?:www\.)?instagram\.com/([A-Za-z0-9._]+)`)
	// Bare @handle mentions in page text. The leading character class keeps
	// email addresses from matching (their local part precedes the @).
	mentionRe = regexp.MustCompile(`(?:^|[\s>"'(])@([A-Za-z0-9._]{2,30})`)
	// Plausible handle shape.
	handleRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._]{0,28}[A-Za-z0-9_]$`)
	// A trailing TLD-looking suffix marks a domain, not a handle.
	domainLikeRe = regexp.MustCompile(`(?i)\.(com|net|org|io|co|uk|de|fr|es|it|nl|app|dev)$`)
	allDigitsRe  = regexp.MustCompile(`^[0-9.]+$`)
)

// validHandle rejects reserved segments and implausible handle shapes.
func validHandle(h string) bool {
	h = strings.TrimSuffix(h, "/")
	if reservedSegments[strings.ToLower(h)] {
		return false
	}
	if !handleRe.MatchString(h) {
		return false
	}
	// An all-digit "handle" is almost always a post ID or phone fragment,
	// and a TLD suffix marks a bare domain mention.
	if allDigitsRe.MatchString(h) || domainLikeRe.MatchString(h) {
		return false
	}
	return true
}

// normalize renders the canonical profile URL for a handle.
func normalize(handle string) string {
	return fmt.Sprintf("https://www.instagram.com/%s/", strings.ToLower(strings.TrimSuffix(handle, "/")))
}

// httpFinder is the production Finder: plain HTTP fetch with a browser-like
// user agent, bounded body read, regex extraction.
type httpFinder struct {
	client *http.Client
}

// NewFinder creates a Finder with the given fetch timeout.
func NewFinder(timeout time.Duration) Finder {
	return &httpFinder{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// NewFinderWithClient creates a Finder over a caller-supplied http.Client.
func NewFinderWithClient(hc *http.Client) Finder {
	return &httpFinder{client: hc}
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func (f *httpFinder) Find(ctx context.Context, websiteURL string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, nil)
	if err != nil {
		return Result{Status: StatusError, Reason: "invalid url: " + err.Error()}
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Status: StatusError, Reason: "fetch: " + err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Result{Status: StatusError, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return Result{Status: StatusError, Reason: "read body: " + err.Error()}
	}

	return Extract(string(body))
}

// Extract runs the pattern families over page HTML. Exposed separately so
// extraction strategies can be tested against fixture HTML without a server.
func Extract(html string) Result {
	// Explicit profile links first: the strongest signal.
	for _, m := range profileLinkRe.FindAllStringSubmatch(html, -1) {
		if validHandle(m[1]) {
			return Result{URL: normalize(m[1]), Status: StatusFound}
		}
	}

	// Fall back to @handle mentions.
	for _, m := range mentionRe.FindAllStringSubmatch(html, -1) {
		if validHandle(m[1]) {
			return Result{URL: normalize(m[1]), Status: StatusFound}
		}
	}

	return Result{Status: StatusNotFound}
}
