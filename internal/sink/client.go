package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"record_syncer/internal/domain"
	"record_syncer/internal/retry"
)

// Config holds sink client configuration.
type Config struct {
	BaseURL string
	Policy  retry.Policy
}

// Client writes records to the sink's upsert endpoint through the retry
// executor.
type Client struct {
	exec    *retry.Executor
	baseURL string
	policy  retry.Policy
	tokens  TokenStrategy
	logger  *slog.Logger
}

func New(cfg Config, exec *retry.Executor, tokens TokenStrategy, logger *slog.Logger) *Client {
	if tokens == nil {
		tokens = DefaultTokens()
	}
	return &Client{
		exec:    exec,
		baseURL: cfg.BaseURL,
		policy:  cfg.Policy,
		tokens:  tokens,
		logger:  logger.With("component", "sink"),
	}
}

type upsertResponse struct {
	Status domain.UpsertStatus `json:"status"`
}

// Upsert writes one record, tagged with its idempotency token, and reports
// whether the sink created it or updated an existing copy.
func (c *Client) Upsert(ctx context.Context, record domain.Record) (domain.UpsertStatus, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Idempotency-Key", c.tokens.Token(record.ExternalID))

	resp, err := c.exec.Do(ctx, http.MethodPost, c.baseURL+"/sink/items", header, body, c.policy)
	if err != nil {
		return "", err
	}

	var result upsertResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("decode upsert response: %w", err)
	}
	return result.Status, nil
}
