package qsc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/NassimMahmoudi/mcp-server/internal/metrics"
	"github.com/NassimMahmoudi/mcp-server/internal/search"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client queries a QSC repository search endpoint. No retries: a failed
// call is "no results" for that call only.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		metrics:  m,
	}
}

// Fetch is Search with every failure logged and turned into an empty payload.
func (c *Client) Fetch(ctx context.Context, req search.Request) search.Payload {
	c.logger.Info("fetching documents",
		zap.String("query", req.Query),
		zap.Int("limit", req.Limit),
	)

	payload, err := c.Search(ctx, req)
	if err != nil {
		if errors.Is(err, search.ErrNoEndpoint) {
			c.logger.Warn("search endpoint not configured, skipping fetch")
		} else {
			c.logger.Error("error fetching documents from repo search",
				zap.String("query", req.Query),
				zap.Error(err),
			)
		}
		return search.EmptyPayload()
	}
	return payload
}

func (c *Client) Search(ctx context.Context, req search.Request) (search.Payload, error) {
	if c.endpoint == "" {
		return search.EmptyPayload(), search.ErrNoEndpoint
	}

	start := time.Now()
	payload, status, err := c.do(ctx, req)
	if c.metrics != nil {
		c.metrics.RecordFetch(status, time.Since(start))
	}
	if err != nil {
		return search.EmptyPayload(), err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, req search.Request) (search.Payload, string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return search.Payload{}, "invalid_endpoint", fmt.Errorf("%w: parse endpoint: %v", search.ErrRequestFailed, err)
	}
	q := u.Query()
	q.Set("q", req.Query)
	q.Set("limit", strconv.Itoa(req.Limit))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return search.Payload{}, "invalid_endpoint", fmt.Errorf("%w: create request: %v", search.ErrRequestFailed, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return search.Payload{}, "transport_error", fmt.Errorf("%w: do request: %v", search.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return search.Payload{}, "transport_error", fmt.Errorf("%w: read response: %v", search.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return search.Payload{}, "status_error", fmt.Errorf("%w: %d", search.ErrUpstreamStatus, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return search.Payload{}, "invalid_payload", search.ErrInvalidPayload
	}

	return gjson.ParseBytes(body), "ok", nil
}
