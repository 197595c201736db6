package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/homeopt/app"
	"github.com/kilianp07/homeopt/config"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/infra/logger"
	"github.com/kilianp07/homeopt/pkg/export"
)

var (
	cfgPath      string
	seed         int64
	generations  int
	population   int
	scenarioPath string
	selection    string
	exportDir    string
)

var rootCmd = &cobra.Command{
	Use:          "homeopt",
	Short:        "Multi-objective appliance scheduler",
	Long:         "Searches start hours for household appliances that trade energy cost against discomfort.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	f := rootCmd.Flags()
	f.Int64Var(&seed, "seed", 0, "random seed for a reproducible run")
	f.IntVarP(&generations, "generations", "g", 0, "number of generations")
	f.IntVarP(&population, "population", "p", 0, "population size")
	f.StringVarP(&scenarioPath, "scenario", "s", "", "scenario file")
	f.StringVar(&selection, "selection", "", "solution to report: min_cost, min_discomfort or balanced")
	f.StringVarP(&exportDir, "out", "o", "", "write CSV, JSON and HTML results into this directory")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Optimizer.Seed = &seed
	}
	if f.Changed("generations") {
		cfg.Optimizer.Generations = generations
	}
	if f.Changed("population") {
		cfg.Optimizer.PopulationSize = population
	}
	if f.Changed("scenario") {
		cfg.Scenario.Path = scenarioPath
	}
	if f.Changed("selection") {
		cfg.Export.Selection = selection
	}
	if f.Changed("out") {
		cfg.Export.Dir = exportDir
		cfg.Export.CSV, cfg.Export.JSON, cfg.Export.HTML = true, true, true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Logging.Apply()
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	stopControl := watchControlSignals(ctx, svc)
	defer stopControl()

	res, err := svc.Run(ctx)
	if errors.Is(err, optimizer.ErrCancelled) {
		fmt.Fprintln(cmd.OutOrStdout(), "optimization cancelled")
		return err
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d schedules on the Pareto front after %d generations\n",
		res.RunID, len(res.Final.Front), res.Final.Generation)
	if res.Selected != nil {
		if err := export.WriteSummary(out, res.Evaluator, res.Selected); err != nil {
			return err
		}
	}
	for _, p := range res.Exported {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	return nil
}
