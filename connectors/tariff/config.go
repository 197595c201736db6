package tariff

import (
	"fmt"
	"time"

	"github.com/kilianp07/homeopt/auth"
)

// Tariff sources.
const (
	SourceScenario = "scenario"
	SourceHTTP     = "http"
)

// Config selects where hourly rates come from.
type Config struct {
	// Source is "scenario" (rates from the scenario file) or "http".
	Source string `json:"source"`
	// URL of the price endpoint; start_date and end_date are appended.
	URL  string    `json:"url"`
	Auth auth.Conf `json:"auth"`
	// Timezone in which hours are bucketed. Empty means local time.
	Timezone       string `json:"timezone"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Day to fetch as YYYY-MM-DD. Empty means tomorrow.
	Day string `json:"day"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Source == "" {
		c.Source = SourceScenario
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Source {
	case SourceScenario:
		return nil
	case SourceHTTP:
	default:
		return fmt.Errorf("tariff: unknown source %q", c.Source)
	}
	if c.URL == "" {
		return fmt.Errorf("tariff: url is required for the http source")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Day != "" {
		if _, err := time.Parse(time.DateOnly, c.Day); err != nil {
			return fmt.Errorf("tariff: day %q: %w", c.Day, err)
		}
	}
	return c.Auth.Validate()
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("tariff: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TargetDay returns midnight of the configured day, or of the day after now.
func (c Config) TargetDay(now time.Time) (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	if c.Day != "" {
		return time.ParseInLocation(time.DateOnly, c.Day, loc)
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, loc), nil
}
