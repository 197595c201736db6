package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/homeopt/core/model"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for file extensions other than yaml, yml and json.
var ErrUnknownFormat = errors.New("unknown scenario format")

// File is the on-disk shape of a scenario. Tariff takes precedence over
// TariffText when both are set; with neither, the default night/day tariff
// applies.
type File struct {
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Appliances []model.Appliance `json:"appliances" yaml:"appliances"`
	Tariff     []float64         `json:"tariff,omitempty" yaml:"tariff,omitempty,flow"`
	TariffText string            `json:"tariff_text,omitempty" yaml:"tariff_text,omitempty"`
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads and validates a scenario file.
func Load(path string) (*model.Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	sc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Decode parses a scenario from r.
func Decode(r io.Reader, format Format) (*model.Scenario, error) {
	var file File
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&file); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return file.Scenario()
}

// Scenario validates the file contents and builds a model.Scenario.
func (f File) Scenario() (*model.Scenario, error) {
	rates := f.Tariff
	if len(rates) == 0 && strings.TrimSpace(f.TariffText) != "" {
		parsed, err := ParseRates(f.TariffText)
		if err != nil {
			return nil, err
		}
		rates = parsed
	}
	if len(rates) == 0 {
		rates = NightDayRates(DefaultNightRate, DefaultDayRate)
	}
	tariff, err := model.NewTariffSchedule(rates)
	if err != nil {
		return nil, err
	}
	return model.NewScenario(f.Appliances, tariff)
}

// FromScenario returns the file representation of sc.
func FromScenario(sc *model.Scenario) File {
	return File{
		Appliances: sc.Appliances(),
		Tariff:     sc.Tariff().Rates(),
	}
}

// Encode writes sc as YAML.
func Encode(w io.Writer, sc *model.Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromScenario(sc)); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return enc.Close()
}
