package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ifcmass/internal/adapters/report"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/logger"
)

var (
	repeatRuns int
	repeatOut  string
)

var repeatCmd = &cobra.Command{
	Use:   "repeat <model.ifc>",
	Short: "Run the calculation several times and record each total",
	Long: `Run the full calculation several times against the same density cache,
appending every whole-model mass as a row of a CSV file. The first runs fill
the cache, so the totals show how the estimate settles.

Examples:
  ifcmass repeat building.ifc -n 100
  ifcmass repeat building.ifc -n 20 --out totals.csv --temperature 0.7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.OpenFile(repeatOut, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", repeatOut, err)
		}
		defer f.Close()

		repeat := commands.NewRepeatCommand(newCalculateCommand(args[0]), repeatRuns)
		repeat.OnRun = func(run int, result *commands.CalculateResult) error {
			logger.Info("Run finished", "run", run, "total_kg", result.Mass.TotalMass, "densities", result.CacheSize)
			return report.AppendTotal(f, result.Mass.TotalMass)
		}

		result, err := repeat.Execute(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Appended %d totals to %s\n", len(result.Totals), repeatOut)
		return nil
	},
}

func init() {
	repeatCmd.Flags().IntVarP(&repeatRuns, "runs", "n", 100, "number of runs")
	repeatCmd.Flags().StringVarP(&repeatOut, "out", "o", "output.csv", "CSV file the totals are appended to")
	rootCmd.AddCommand(repeatCmd)
}
