package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"golang.org/x/time/rate"
)

// PageFunc is called after each fetched page with the running item count and the upstream total.
type PageFunc func(page, fetched, total int)

// BatchFunc is called after every attempted write batch, successful or not.
type BatchFunc func(BatchResult)

// BatchResult describes one write batch. Index is zero-based.
type BatchResult struct {
	Index int
	Total int
	IDs   []string
	Err   error
}

// LibraryOpts configures a [LibraryClient].
type LibraryOpts struct {
	BaseURL    string       // Web API base, e.g. https://api.spotify.com/v1
	HTTPClient *http.Client // Defaults to [http.DefaultClient]
	RateLimit  float64      // Requests per second, burst 1 (0 disables)
	Retry      RetryPolicy  // Defaults to a single attempt
	Logger     *log.Logger
}

// LibraryClient reads and writes the liked-songs library of whichever account the credential belongs to.
type LibraryClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   RetryPolicy
	logger  *log.Logger
}

// NewLibraryClient creates a LibraryClient from opts.
func NewLibraryClient(opts LibraryOpts) *LibraryClient {
	c := &LibraryClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  opts.HTTPClient,
		retry:   opts.Retry,
		logger:  opts.Logger,
	}
	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = discardLogger()
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

// Fetch pages through GET /me/tracks from offset 0 until the response has no next page.
//
// Any page failure aborts the fetch and no items are returned.
func (c *LibraryClient) Fetch(ctx context.Context, cred models.Credential, onPage PageFunc) ([]models.Item, error) {
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", shared.ErrAuth)
	}

	var items []models.Item
	offset := 0
	for page := 1; ; page++ {
		var resp savedTracksPage
		endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", PageSize, offset)
		if err := c.do(ctx, cred, http.MethodGet, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, saved := range resp.Items {
			items = append(items, saved.Track.item())
		}
		c.logger.Debug("fetched page", "page", page, "offset", offset, "items", len(resp.Items), "total", resp.Total)

		if onPage != nil {
			onPage(page, len(items), resp.Total)
		}

		if resp.Next == nil || *resp.Next == "" {
			return items, nil
		}
		offset += PageSize
	}
}

// Write saves items to the library in sequential batches of at most [BatchSize], in input order.
//
// The first failing batch stops the write. Batches already accepted upstream stay saved.
func (c *LibraryClient) Write(ctx context.Context, cred models.Credential, items []models.Item, onBatch BatchFunc) error {
	batches := Chunk(models.ItemIDs(items), BatchSize)
	if len(batches) == 0 {
		return nil
	}
	if cred.AccessToken == "" {
		return fmt.Errorf("%w: %w: missing access token", shared.ErrWrite, shared.ErrAuth)
	}

	for i, ids := range batches {
		endpoint := "/me/tracks?" + url.Values{"ids": {strings.Join(ids, ",")}}.Encode()
		err := c.do(ctx, cred, http.MethodPut, endpoint, nil)

		if onBatch != nil {
			onBatch(BatchResult{Index: i, Total: len(batches), IDs: ids, Err: err})
		}
		if err != nil {
			return fmt.Errorf("%w: batch %d of %d: %w", shared.ErrWrite, i+1, len(batches), err)
		}
		c.logger.Debug("saved batch", "batch", i+1, "of", len(batches), "size", len(ids))
	}
	return nil
}

// Chunk splits ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = BatchSize
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// do performs an authenticated request under the retry policy, decoding a JSON body into result when non-nil.
func (c *LibraryClient) do(ctx context.Context, cred models.Credential, method, endpoint string, result any) error {
	return c.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			c.logger.Warn("retrying request", "method", method, "endpoint", endpoint, "attempt", attempt)
		}
		return c.attempt(ctx, cred, method, endpoint, result)
	})
}

func (c *LibraryClient) attempt(ctx context.Context, cred models.Credential, method, endpoint string, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s %s: %w", method, endpoint, ctx.Err())
		}
		return fmt.Errorf("%w: %s %s: %v", shared.ErrNetwork, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, endpoint, resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode %s response: %v", shared.ErrAPI, endpoint, err)
		}
	}
	return nil
}
