package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ifcmass/internal/application/commands"
)

var densityCmd = &cobra.Command{
	Use:   "density <material>",
	Short: "Ask the density lookup for one material",
	Long: `Query the configured density lookup directly. The cache is neither read
nor written.

Examples:
  ifcmass density concrete
  ifcmass density "Stahl S235" --lookup ollama`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lookupCmd := commands.NewLookupDensityCommand(lookup, args[0])
		lookupCmd.Temperature = cfg.Temperature

		result, err := lookupCmd.Execute(context.Background())
		if err != nil {
			return err
		}

		if !result.Valid {
			fmt.Printf("%s is not a valid material\n", result.Material)
			return nil
		}
		fmt.Printf("Density of %s: %d kg/m³\n", result.Material, result.Density)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(densityCmd)
}
