package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/homeopt/core/scenario"
)

var scenarioOut string

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Print the reference household scenario as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scenarioOut == "" {
			return scenario.Encode(cmd.OutOrStdout(), scenario.Default())
		}
		f, err := os.Create(scenarioOut)
		if err != nil {
			return err
		}
		if err := scenario.Encode(f, scenario.Default()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", scenarioOut)
		return nil
	},
}

func init() {
	scenarioCmd.Flags().StringVarP(&scenarioOut, "out", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(scenarioCmd)
}
