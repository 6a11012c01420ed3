// Package geo resolves location names to geodata through the hascore
// service, memoizing answers in Redis for a day.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	geoPath     = "/1/geo/get_by_name"
	cacheTTL    = 24 * time.Hour
	cachePrefix = "geodata:"
	httpTimeout = 10 * time.Second
)

// Client looks up geodata. With an empty base URL every lookup returns an
// empty result without touching the network or the cache.
type Client struct {
	baseURL string
	rdb     redis.Cmdable
	client  *http.Client
}

// NewClient constructs a Client for the hascore server at baseURL.
func NewClient(baseURL string, rdb redis.Cmdable) *Client {
	return &Client{
		baseURL: baseURL,
		rdb:     rdb,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// hascoreResponse mirrors the hascore JSON envelope.
type hascoreResponse struct {
	Status string         `json:"status"`
	Result map[string]any `json:"result"`
}

// LocationGeodata returns the geodata for location, or an empty map when
// hascore does not know it. Empty answers are memoized too.
func (c *Client) LocationGeodata(ctx context.Context, location string) (map[string]any, error) {
	if c.baseURL == "" {
		return map[string]any{}, nil
	}

	key := cachePrefix + location
	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var data map[string]any
		if err := json.Unmarshal(cached, &data); err == nil {
			return data, nil
		}
		logrus.WithField("location", location).Warn("discarding undecodable geodata cache entry")
	case !errors.Is(err, redis.Nil):
		logrus.WithError(err).Warn("geodata cache read failed")
	}

	data, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("geodata cache write failed")
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, location string) (map[string]any, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse hascore url: %w", err)
	}
	endpoint := base.ResolveReference(&url.URL{Path: geoPath})
	endpoint.RawQuery = url.Values{"name": {location}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var apiResp hascoreResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal (status %d): %w", resp.StatusCode, err)
	}

	if apiResp.Status != "ok" || apiResp.Result == nil {
		return map[string]any{}, nil
	}
	return apiResp.Result, nil
}
