// Package httpseed fetches seed documents published as static JSON files,
// e.g. <base>/vocabulary.json.
package httpseed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lingo-trainer/internal/app"
)

// maxDocumentSize bounds a single seed document.
const maxDocumentSize = 8 << 20

type Source struct {
	base   *url.URL
	client *http.Client
}

func NewSource(baseURL string, timeout time.Duration) (*Source, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("seed base url %q: unsupported scheme", baseURL)
	}
	return &Source{base: base, client: &http.Client{Timeout: timeout}}, nil
}

func (s *Source) Fetch(ctx context.Context, doc app.SeedDocument) ([]byte, error) {
	target := s.base.JoinPath(string(doc) + ".json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return raw, nil
}
