package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client fetches paginated transfer records for a single watched address.
// A rate limiter spaces successive page fetches so one reconciliation pass
// does not hammer the feed source; waiting on it is cancellable through
// the caller's context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	address    string
	pageSize   int
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// ClientConfig holds configuration for the feed client
type ClientConfig struct {
	BaseURL        string
	Address        string
	PageSize       int
	PageDelay      time.Duration
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// NewClient creates a new feed client
func NewClient(cfg ClientConfig) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = 500 * time.Millisecond
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		address:    cfg.Address,
		pageSize:   cfg.PageSize,
		limiter:    rate.NewLimiter(rate.Every(cfg.PageDelay), 1),
		logger:     cfg.Logger.With().Str("component", "feed_client").Logger(),
	}
}

// FirstPage fetches the newest page of token transfers at or after the
// given timestamp.
func (c *Client) FirstPage(ctx context.Context, since time.Time) (*Page, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	if !since.IsZero() {
		q.Set("min_timestamp", strconv.FormatInt(since.UnixMilli(), 10))
	}
	u := fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20?%s", c.baseURL, c.address, q.Encode())
	return c.fetch(ctx, u)
}

// NextPage fetches the page behind a continuation path returned by a
// previous page.
func (c *Client) NextPage(ctx context.Context, next string) (*Page, error) {
	return c.fetch(ctx, c.baseURL+next)
}

func (c *Client) fetch(ctx context.Context, u string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", u).Msg("Feed request failed")
		return nil, fmt.Errorf("%w: status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}

	var pr pageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedDecode, err)
	}

	page := &Page{Records: pr.Data}
	if pr.Next != nil {
		page.Next = *pr.Next
	}

	c.logger.Debug().
		Int("records", len(page.Records)).
		Bool("has_next", page.Next != "").
		Msg("Fetched feed page")

	return page, nil
}
