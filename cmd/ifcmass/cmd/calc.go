package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"ifcmass/internal/adapters/report"
	"ifcmass/internal/application"
	"ifcmass/internal/logger"
)

var (
	calcFormat string
	calcCopy   bool
	calcTypes  []string
)

var calcCmd = &cobra.Command{
	Use:   "calc <model.ifc>",
	Short: "Calculate the mass of a model",
	Long: `Calculate the volume and mass per element type and material, and the
whole mass of the model.

Examples:
  ifcmass calc building.ifc
  ifcmass calc building.ifc --format csv > summary.csv
  ifcmass calc building.ifc --lookup ollama --model llama3.2
  ifcmass calc building.ifc --types IfcWall,IfcSlab --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(calcFormat)
		if err != nil {
			return err
		}

		calc := newCalculateCommand(args[0])
		calc.Types = calcTypes

		result, err := calc.Execute(context.Background())
		if result == nil {
			if errors.Is(err, application.ErrModelLoad) {
				logger.Fatal("Model could not be loaded", "path", args[0], "err", err)
			}
			return err
		}
		if err != nil {
			// The summary is complete, only the cache was not written
			logger.Error("Densities were not saved", "err", err)
		}

		for _, t := range result.Stats.SkippedTypes {
			logger.Debug("Type not in schema", "type", t, "schema", result.Schema)
		}

		if err := report.Write(os.Stdout, result.Mass, format); err != nil {
			return err
		}

		if calcCopy {
			var buf bytes.Buffer
			if err := report.WriteCSV(&buf, result.Mass); err != nil {
				return err
			}
			if err := clipboard.WriteAll(buf.String()); err != nil {
				return fmt.Errorf("failed to copy summary: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Summary copied to clipboard")
		}
		return nil
	},
}

func init() {
	calcCmd.Flags().StringVarP(&calcFormat, "format", "f", "table", "output format: table, csv or json")
	calcCmd.Flags().BoolVarP(&calcCopy, "copy", "c", false, "copy the summary to the clipboard as CSV")
	calcCmd.Flags().StringSliceVar(&calcTypes, "types", nil, "element types to include (default: every volumetric type)")
	rootCmd.AddCommand(calcCmd)
}
