// Package httpapi queries a remote search endpoint over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Sift/1.0"

	maxBodyBytes = 8 << 20
)

// Client implements domain.SearchProvider against GET {baseURL}/search
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new search API client. An empty token sends no
// Authorization header.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Search fetches up to limit items matching query
func (c *Client) Search(ctx context.Context, query string, limit int) (domain.Page, error) {
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/search", params)
	if err != nil {
		return domain.Page{}, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return domain.Page{}, fmt.Errorf("%w: malformed response: %w", domain.ErrProviderUnavailable, err)
	}

	return mapPage(resp), nil
}

// doRequest performs an authenticated HTTP request and classifies failures
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrProviderRejected, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("search request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrCancelled, ctxErr)
		}
		c.logger.Error("search request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("search request error", "status", resp.StatusCode, "body", string(body))
		return nil, statusError(resp.StatusCode, body)
	}

	return body, nil
}

// statusError maps a non-2xx status to a domain error. Timeouts, throttling
// and server faults are retryable; any other client error is not.
func statusError(code int, body []byte) error {
	msg := http.StatusText(code)
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, code, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrProviderRejected, code, msg)
	}
}

func mapPage(resp SearchResponse) domain.Page {
	items := make([]domain.Item, 0, len(resp.Items))
	for _, dto := range resp.Items {
		if dto.ID == "" {
			continue
		}
		label := dto.Label
		if label == "" {
			label = dto.ID
		}
		items = append(items, domain.Item{ID: dto.ID, Label: label, Count: dto.Count})
	}

	total := len(items)
	if resp.Total != nil && *resp.Total > total {
		total = *resp.Total
	}
	return domain.Page{Items: items, Total: total}
}

var _ domain.SearchProvider = (*Client)(nil)
