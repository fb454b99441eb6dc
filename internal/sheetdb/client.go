// Package sheetdb talks to the external tabular record store. The store
// exposes a single endpoint: GET ?tab=<collection> returns a JSON array of
// flat string rows, POST applies an {action, tab, data} mutation envelope.
package sheetdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"agendei/internal/metrics"
)

// Mutation actions accepted by the store endpoint.
const (
	actionInsert = "insert"
	actionUpdate = "update"
	actionDelete = "delete"
)

// Client is an HTTP client for one tenant's record-store endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration

	writeLimit *rate.Limiter
}

type mutationEnvelope struct {
	Action string `json:"action"`
	Tab    string `json:"tab"`
	Data   []Row  `json:"data"`
}

// NewClient constructs a client for an endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		// Apps-script style endpoints throttle aggressively; keep local
		// mutations under two per second with a small burst.
		writeLimit: rate.NewLimiter(rate.Limit(2), 5),
	}
}

// UseRedisCache configures optional read-through caching for Fetch.
func (c *Client) UseRedisCache(rdb *redis.Client, ttl time.Duration) {
	c.redis = rdb
	c.cacheTTL = ttl
}

// Fetch returns the full current row set of a collection. An empty or absent
// collection yields an empty slice, never an error.
func (c *Client) Fetch(ctx context.Context, tab string) ([]Row, error) {
	cacheKey := fmt.Sprintf("sheetdb:%s:%s", c.endpoint, tab)

	var rows []Row
	if c.readCache(ctx, cacheKey, &rows) {
		return rows, nil
	}

	endpoint := fmt.Sprintf("%s?tab=%s", c.endpoint, url.QueryEscape(tab))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncStoreRequest("read", "error")
		return nil, fmt.Errorf("record store fetch %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.IncStoreRequest("read", "error")
		return nil, fmt.Errorf("record store fetch %s: http %d", tab, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		metrics.IncStoreRequest("read", "error")
		return nil, fmt.Errorf("record store fetch %s: decode: %w", tab, err)
	}
	metrics.IncStoreRequest("read", "ok")

	if rows == nil {
		rows = []Row{}
	}
	c.writeCache(ctx, cacheKey, rows)
	return rows, nil
}

// Insert appends a row to a collection.
func (c *Client) Insert(ctx context.Context, tab string, row Row) error {
	return c.mutate(ctx, actionInsert, tab, row)
}

// Update rewrites the first row whose id column matches row's id.
func (c *Client) Update(ctx context.Context, tab string, row Row) error {
	return c.mutate(ctx, actionUpdate, tab, row)
}

// Delete removes all rows whose id column matches row's id.
func (c *Client) Delete(ctx context.Context, tab string, row Row) error {
	return c.mutate(ctx, actionDelete, tab, row)
}

func (c *Client) mutate(ctx context.Context, action, tab string, row Row) error {
	if err := c.writeLimit.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(mutationEnvelope{Action: action, Tab: tab, Data: []Row{row}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncStoreRequest(action, "error")
		return fmt.Errorf("record store %s %s: %w", action, tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.IncStoreRequest(action, "error")
		return fmt.Errorf("record store %s %s: http %d", action, tab, resp.StatusCode)
	}
	metrics.IncStoreRequest(action, "ok")

	// A mutation invalidates whatever we cached for this collection.
	c.dropCache(ctx, fmt.Sprintf("sheetdb:%s:%s", c.endpoint, tab))
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil && c.logger != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) dropCache(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, key).Err()
}
