package elements

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps a single source download. Celestrak group dumps
// run a few hundred KB; anything larger is a misconfigured URL.
const maxResponseBytes = 10 << 20

// Fetcher downloads raw TLE text from a list of source URLs.
type Fetcher struct {
	sources []string
	client  *http.Client
	log     *log.Logger
}

func NewFetcher(sources []string, timeout time.Duration, logger *log.Logger) *Fetcher {
	return &Fetcher{
		sources: sources,
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Fetch downloads every configured source and concatenates the bodies.
// Individual source failures are logged and skipped; an error comes back
// only when no source yields data.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	var buf strings.Builder
	var lastErr error
	fetched := 0

	for _, url := range f.sources {
		body, err := f.fetchOne(ctx, url)
		if err != nil {
			f.log.Printf("elements: fetch %s failed: %v", url, err)
			lastErr = err
			continue
		}
		buf.WriteString(body)
		buf.WriteString("\n")
		fetched++
	}

	if fetched == 0 {
		if lastErr == nil {
			lastErr = errors.New("no sources configured")
		}
		return "", fmt.Errorf("all element sources failed: %w", lastErr)
	}
	return buf.String(), nil
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxResponseBytes {
		return "", fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}
	return string(b), nil
}
