// Package tariff fetches day-ahead wholesale prices and turns them into an
// hourly tariff schedule.
package tariff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/homeopt/auth"
	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/infra/logger"
)

// ErrIncompleteCurve is returned when the feed does not cover every hour.
var ErrIncompleteCurve = errors.New("price curve does not cover every hour")

const mwhToKwh = 1000

// Client reads the price feed.
type Client struct {
	baseURL string
	http    *http.Client
	auth    auth.Authorizer
	loc     *time.Location
	log     logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client from cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		auth:    auth.New(cfg.Auth),
		loc:     loc,
		log:     logger.New("tariff"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch downloads the prices of the 24 hours starting at day's midnight and
// returns them as a schedule in EUR/kWh.
func (c *Client) Fetch(ctx context.Context, day time.Time) (model.TariffSchedule, error) {
	start := day.In(c.loc)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 0, 1)

	resp, err := c.get(ctx, start, end)
	if err != nil {
		return model.TariffSchedule{}, err
	}
	rates, err := c.hourly(resp, start, end)
	if err != nil {
		return model.TariffSchedule{}, err
	}
	return model.NewTariffSchedule(rates)
}

func (c *Client) get(ctx context.Context, start, end time.Time) (*Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	q := u.Query()
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if err := c.auth.SetAuthHeader(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to set auth header: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// hourly averages the prices whose start falls in each hour of [start, end).
// Negative prices are clamped to zero.
func (c *Client) hourly(resp *Response, start, end time.Time) ([]float64, error) {
	var sum [model.HoursPerDay]float64
	var count [model.HoursPerDay]int
	for _, ex := range resp.FrancePowerExchanges {
		for _, v := range ex.Values {
			t, err := time.Parse(time.RFC3339, v.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse time: %w", err)
			}
			if t.Before(start) || !t.Before(end) {
				continue
			}
			h := int(t.Sub(start) / time.Hour)
			if h >= model.HoursPerDay {
				continue
			}
			sum[h] += v.Price
			count[h]++
		}
	}
	rates := make([]float64, model.HoursPerDay)
	var missing []int
	for h := range rates {
		if count[h] == 0 {
			missing = append(missing, h)
			continue
		}
		r := sum[h] / float64(count[h]) / mwhToKwh
		if r < 0 {
			c.log.Warnf("negative price %.4f at hour %d clamped to 0", r, h)
			r = 0
		}
		rates[h] = r
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing hours %v", ErrIncompleteCurve, missing)
	}
	return rates, nil
}
