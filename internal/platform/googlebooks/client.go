package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bookclub/internal/apperr"
)

// ErrVolumeNotFound is returned by Volume when the catalog has no such id.
var ErrVolumeNotFound = fmt.Errorf("catalog volume %w", apperr.ErrNotFound)

// Client talks to the Google Books volumes API. Requests are never retried;
// every transport or status failure surfaces as apperr.ErrCatalogUnavailable.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger.With("component", "googlebooks"),
	}
}

// Search returns up to limit normalized books for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Book, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")

	var res volumeList
	if err := c.get(ctx, "/volumes", params, &res); err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(res.Items))
	for _, v := range res.Items {
		books = append(books, normalize(v))
	}
	c.logger.DebugContext(ctx, "catalog search", "query", query, "results", len(books))
	return books, nil
}

// Volume fetches a single volume by its catalog id.
func (c *Client) Volume(ctx context.Context, id string) (Book, error) {
	var v volume
	if err := c.get(ctx, "/volumes/"+url.PathEscape(id), url.Values{}, &v); err != nil {
		return Book{}, err
	}
	return normalize(v), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", apperr.ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", apperr.ErrCatalogUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound && path != "/volumes" {
		return ErrVolumeNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code %d", apperr.ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode response: %v", apperr.ErrCatalogUnavailable, err)
	}
	return nil
}
