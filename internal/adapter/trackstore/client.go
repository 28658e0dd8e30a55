// Package trackstore fetches per-year AEW track files over HTTP.
package trackstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/domain"
)

// Client retrieves year files. It never caches: each call is a new request.
type Client struct {
	baseURL      string
	pathTemplate string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a client for files at baseURL/pathTemplate, where the
// template contains the {year} placeholder.
func NewClient(baseURL, pathTemplate string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		pathTemplate: pathTemplate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// URL returns the resource location for a year.
func (c *Client) URL(year string) string {
	return c.baseURL + "/" + strings.ReplaceAll(c.pathTemplate, config.YearPlaceholder, year)
}

// FetchYear downloads and decodes the track collection for a year. A 404 maps
// to domain.ErrYearNotFound, other failures to *domain.StatusError.
func (c *Client) FetchYear(ctx context.Context, year string) ([]domain.Track, error) {
	u := c.URL(year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", year, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", domain.ErrYearNotFound, year)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("track file request failed", "url", u, "status", resp.StatusCode, "body", string(body))
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	tracks, err := domain.DecodeCollection(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("track file fetched", "url", u, "tracks", len(tracks))
	return tracks, nil
}
