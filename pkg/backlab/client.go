// Package backlab is a typed Go client for the backlab-server HTTP API.
package backlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides a Go SDK for interacting with the backlab-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backlab API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backlab: %d %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveDataset fetches days of history for a symbol and persists it
// server-side as a new dataset.
func (c *Client) SaveDataset(ctx context.Context, symbol string, days int) (*SaveDatasetResult, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var r SaveDatasetResult
	if err := c.do(ctx, http.MethodPost, "/api/datasets/"+url.PathEscape(symbol), q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListDatasets returns the dataset catalog, newest first.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	var r datasetsResponse
	if err := c.do(ctx, http.MethodGet, "/api/datasets", nil, &r); err != nil {
		return nil, err
	}
	return r.Datasets, nil
}

// GetDataset returns one dataset with its full bar series.
func (c *Client) GetDataset(ctx context.Context, id string) (*DatasetData, error) {
	var r DatasetData
	if err := c.do(ctx, http.MethodGet, "/api/datasets/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// BacktestOptions are the tunable parameters of a backtest request.
// Zero-valued fields fall back to the server's defaults.
type BacktestOptions struct {
	Strategy       string
	ShortPeriod    int
	LongPeriod     int
	TrainSplit     float64
	InitialCapital float64
}

func (o BacktestOptions) query() url.Values {
	q := url.Values{}
	if o.Strategy != "" {
		q.Set("strategy", o.Strategy)
	}
	if o.ShortPeriod > 0 {
		q.Set("short_period", strconv.Itoa(o.ShortPeriod))
	}
	if o.LongPeriod > 0 {
		q.Set("long_period", strconv.Itoa(o.LongPeriod))
	}
	if o.TrainSplit > 0 {
		q.Set("train_split", strconv.FormatFloat(o.TrainSplit, 'f', -1, 64))
	}
	if o.InitialCapital > 0 {
		q.Set("initial_capital", strconv.FormatFloat(o.InitialCapital, 'f', -1, 64))
	}
	return q
}

// RunBacktest runs a backtest against a saved dataset.
func (c *Client) RunBacktest(ctx context.Context, datasetID string, opts BacktestOptions) (*BacktestResult, error) {
	var r BacktestResult
	if err := c.do(ctx, http.MethodPost, "/api/backtest/"+url.PathEscape(datasetID), opts.query(), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// OptimizeOptions are the tunable parameters of an optimization request.
// Zero-valued fields fall back to the server's defaults.
type OptimizeOptions struct {
	TrainSplit     float64
	InitialCapital float64
}

// Optimize grid-searches strategy parameters against a saved dataset.
func (c *Client) Optimize(ctx context.Context, datasetID string, opts OptimizeOptions) (*OptimizationResult, error) {
	q := url.Values{}
	if opts.TrainSplit > 0 {
		q.Set("train_split", strconv.FormatFloat(opts.TrainSplit, 'f', -1, 64))
	}
	if opts.InitialCapital > 0 {
		q.Set("initial_capital", strconv.FormatFloat(opts.InitialCapital, 'f', -1, 64))
	}
	var r OptimizationResult
	if err := c.do(ctx, http.MethodGet, "/api/optimize/"+url.PathEscape(datasetID), q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns recent backtest runs, newest first. A non-positive
// limit uses the server default.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var r runsResponse
	if err := c.do(ctx, http.MethodGet, "/api/runs", q, &r); err != nil {
		return nil, err
	}
	return r.Runs, nil
}
