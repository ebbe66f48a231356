package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Target sites are scraped with a desktop browser identity; several block
// obvious bot agents outright.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// StatusError is a non-2xx response from the target. Kept distinct from
// transport errors so callers can surface the upstream status verbatim.
type StatusError struct {
	Status     int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to fetch the page. Status: %d - %s", e.Status, e.StatusText)
}

// Gateway performs the single outbound GET per scrape run. One attempt,
// no retry; any failure is terminal for that run.
type Gateway struct {
	hc      *http.Client
	limiter *HostLimiter
}

func NewGateway(timeout time.Duration, limiter *HostLimiter) *Gateway {
	return &Gateway{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Get fetches rawURL and returns the response body as text.
func (g *Gateway) Get(ctx context.Context, rawURL string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.WaitURL(ctx, rawURL); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := g.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &StatusError{Status: res.StatusCode, StatusText: http.StatusText(res.StatusCode)}
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}
