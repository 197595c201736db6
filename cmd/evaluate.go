package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/core/scenario"
	"github.com/kilianp07/homeopt/pkg/export"
)

var (
	evalStarts   string
	evalScenario string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a hand-written schedule",
	Example: `  homeopt evaluate --starts 0,2,0,3,1
  homeopt evaluate --scenario home.yaml --starts "22 1 0"`,
	RunE: evaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalStarts, "starts", "", "start hour of every appliance, in scenario order")
	evaluateCmd.Flags().StringVarP(&evalScenario, "scenario", "s", "", "scenario file (default: reference household)")
	_ = evaluateCmd.MarkFlagRequired("starts")
	rootCmd.AddCommand(evaluateCmd)
}

// parseStarts reads hours separated by commas or spaces.
func parseStarts(text string, n int) ([]int, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d start hours, got %d", n, len(fields))
	}
	hours := make([]int, n)
	for i, f := range fields {
		h, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("start hour %q: %w", f, err)
		}
		if h < 0 || h >= model.HoursPerDay {
			return nil, fmt.Errorf("start hour %d outside 0..23", h)
		}
		hours[i] = h
	}
	return hours, nil
}

func evaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc := scenario.Default()
	path := cfg.Scenario.Path
	if evalScenario != "" {
		path = evalScenario
	}
	if path != "" {
		if sc, err = scenario.Load(path); err != nil {
			return err
		}
	}
	hours, err := parseStarts(evalStarts, sc.Len())
	if err != nil {
		return err
	}
	ev := optimizer.NewEvaluator(sc, cfg.Optimizer.Penalties)
	ind := &model.Individual{StartHours: hours}
	ev.Evaluate(ind)
	return export.WriteSummary(cmd.OutOrStdout(), ev, ind)
}
