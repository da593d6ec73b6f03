package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ifcmass/internal/adapters/editor"
	"ifcmass/internal/adapters/jsonstore"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/config"
)

var importOverwrite bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and edit the density cache",
	Long: `Inspect and edit the persisted density cache.

Examples:
  ifcmass cache list
  ifcmass cache set "Beton C30/37" 2400
  ifcmass cache set cardboard 0
  ifcmass cache import old_densities.json --store sqlite
  ifcmass cache edit`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached densities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := commands.NewListDensitiesCommand(store).Execute(context.Background())
		if err != nil {
			return err
		}

		for _, e := range entries {
			if e.Invalid() {
				fmt.Printf("%s invalid\n", e.Name)
				continue
			}
			fmt.Printf("%s %d\n", e.Name, e.Density)
		}
		return nil
	},
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <material> <density>",
	Short: "Set the density of a material (0 marks it invalid)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		density, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("density must be an integer in kg/m³: %s", args[1])
		}

		result, err := commands.NewSetDensityCommand(store, args[0], density).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <densities.json>",
	Short: "Merge a JSON density file into the cache",
	Long: `Merge the entries of a JSON density file into the configured cache.
Existing entries are kept unless --overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := config.OpenJSONStore(args[0])
		importCmd := commands.NewImportDensitiesCommand(store, source, importOverwrite)

		result, err := importCmd.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d added, %d updated, %d unchanged\n",
			args[0], result.Added, result.Updated, result.Unchanged)
		return nil
	},
}

var cacheEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the JSON density cache in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		js, ok := store.(*jsonstore.Store)
		if !ok {
			return fmt.Errorf("only the json store can be edited, use cache set for %s", cfg.Store)
		}

		if err := editor.New().Edit(js.Path()); err != nil {
			return err
		}

		// Validate the edited file
		entries, err := js.Load()
		if err != nil {
			return fmt.Errorf("edited cache is not usable: %w", err)
		}
		fmt.Printf("%s: %d entries\n", js.Path(), len(entries))
		return nil
	},
}

func init() {
	cacheImportCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "replace existing entries")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheSetCmd)
	cacheCmd.AddCommand(cacheImportCmd)
	cacheCmd.AddCommand(cacheEditCmd)
	rootCmd.AddCommand(cacheCmd)
}
