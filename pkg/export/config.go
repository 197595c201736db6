package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/homeopt/core/optimizer"
)

// Config selects which artifacts WriteAll produces.
type Config struct {
	Dir       string `json:"dir"`
	CSV       bool   `json:"csv"`
	JSON      bool   `json:"json"`
	HTML      bool   `json:"html"`
	Selection string `json:"selection"`
}

// Enabled reports whether any artifact is requested.
func (c Config) Enabled() bool {
	return c.Dir != "" && (c.CSV || c.JSON || c.HTML)
}

// SetDefaults fills the selection policy.
func (c *Config) SetDefaults() {
	if c.Selection == "" {
		c.Selection = string(optimizer.SelectBalanced)
	}
}

// Validate checks the selection policy.
func (c Config) Validate() error {
	if _, err := optimizer.ParseSelection(c.Selection); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if (c.CSV || c.JSON || c.HTML) && c.Dir == "" {
		return errors.New("export: dir is required")
	}
	return nil
}

// WriteAll writes the requested artifacts of a finished run into cfg.Dir and
// returns the written paths.
func WriteAll(cfg Config, runID string, ev *optimizer.Evaluator, final optimizer.Snapshot, at time.Time) ([]string, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	policy, err := optimizer.ParseSelection(cfg.Selection)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	selected := optimizer.SelectSolution(final.Front, policy)

	type artifact struct {
		name  string
		write func(io.Writer) error
	}
	var arts []artifact
	if cfg.CSV {
		arts = append(arts, artifact{"front.csv", func(w io.Writer) error {
			return WriteFrontCSV(w, ev.Scenario(), final.Front)
		}})
		if selected != nil {
			arts = append(arts,
				artifact{"report.csv", func(w io.Writer) error { return WriteReportCSV(w, ev, selected, at) }},
				artifact{"summary.txt", func(w io.Writer) error { return WriteSummary(w, ev, selected) }},
			)
		}
	}
	if cfg.JSON {
		arts = append(arts, artifact{"front.json", func(w io.Writer) error { return WriteFrontJSON(w, final.Front) }})
	}
	if cfg.HTML {
		arts = append(arts,
			artifact{"front.html", func(w io.Writer) error { return RenderFrontHTML(w, final) }},
			artifact{"tariff.html", func(w io.Writer) error { return RenderTariffHTML(w, ev.Scenario().Tariff()) }},
		)
	}

	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		p := filepath.Join(cfg.Dir, runID+"-"+a.name)
		if err := writeFile(p, a.write); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("export %s: %w", filepath.Base(path), err)
	}
	return nil
}

