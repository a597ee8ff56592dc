package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"record_syncer/internal/domain"
	"record_syncer/internal/retry"
)

// maxPages caps pagination regardless of what the source's cursors claim,
// so a misbehaving source cannot loop the fetch forever.
const maxPages = 100

// Config holds source client configuration.
type Config struct {
	BaseURL  string
	PageSize int
	Policy   retry.Policy
}

// Client reads the source's paginated list endpoint through the retry
// executor.
type Client struct {
	exec     *retry.Executor
	baseURL  string
	pageSize int
	policy   retry.Policy
	logger   *slog.Logger
}

func New(cfg Config, exec *retry.Executor, logger *slog.Logger) *Client {
	return &Client{
		exec:     exec,
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		policy:   cfg.Policy,
		logger:   logger.With("component", "source"),
	}
}

// FetchAll walks the source's pages starting at page 1, following the
// next-page cursor and preserving source order, and returns every record,
// or the first limit records when limit is positive. A page that exhausts
// its retry budget fails the whole fetch: pagination integrity depends on
// every page succeeding, so no partial set is returned.
func (c *Client) FetchAll(ctx context.Context, limit int) ([]domain.Record, error) {
	var all []domain.Record

	page := 1
	for pages := 0; pages < maxPages; pages++ {
		result, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		all = append(all, result.Items...)

		c.logger.Debug("fetched page",
			"page", page,
			"items", len(result.Items),
			"total", len(all),
		)

		if limit > 0 && len(all) >= limit {
			break
		}
		if result.NextPage == nil {
			break
		}
		page = *result.NextPage
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*pageResponse, error) {
	url := fmt.Sprintf("%s/source/items?page=%d&limit=%d", c.baseURL, page, c.pageSize)

	resp, err := c.exec.Do(ctx, http.MethodGet, url, nil, nil, c.policy)
	if err != nil {
		return nil, err
	}

	var result pageResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &result, nil
}
