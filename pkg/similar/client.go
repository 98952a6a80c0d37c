package similar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/habitatline/habitat-backend/pkg/errors"
)

const (
	defaultLimit               = 24
	responseBodyReadLimit int64 = 1024
)

// Client calls the similarity service that groups catalog products into
// variant families. The service answers POST {base}/{kind}/{id}/similar with
// the ids of products sharing the current product's design.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimit overrides the default candidate limit.
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// NewClient builds the similarity client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "similarity service base URL is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &Client{
		baseURL:    trimmed,
		limit:      defaultLimit,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type similarRequest struct {
	Limit int `json:"limit"`
}

type similarResponse struct {
	Data []struct {
		ID uuid.UUID `json:"id"`
	} `json:"data"`
}

// FindSimilarIDs returns the ids of products the similarity service considers
// part of the same family as the given product. The current product may or
// may not be echoed back; callers must deduplicate.
func (c *Client) FindSimilarIDs(ctx context.Context, kind string, id uuid.UUID) ([]uuid.UUID, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "similarity client not configured")
	}
	if strings.TrimSpace(kind) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product kind is required")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	payload, err := json.Marshal(similarRequest{Limit: c.limit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal similar request")
	}

	url := fmt.Sprintf("%s/%s/%s/similar", c.baseURL, kind, id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build similar request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute similar request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "similar request failed")
	}

	var apiResp similarResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode similar response")
	}

	ids := make([]uuid.UUID, 0, len(apiResp.Data))
	for _, row := range apiResp.Data {
		if row.ID != uuid.Nil {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}
