package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ifcmass/internal/adapters/geometry"
	"ifcmass/internal/adapters/ifc"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/config"
	"ifcmass/internal/logger"
	"ifcmass/internal/logger/console"
	"ifcmass/internal/ports"
)

var (
	flags struct {
		key         string
		cache       string
		store       string
		lookup      string
		model       string
		ollamaURL   string
		temperature float64
		debug       bool
		noGeometry  bool
		meshCells   int
	}

	cfg    config.Config
	store  ports.DensityStore
	closer io.Closer
	lookup ports.DensityLookup
)

var rootCmd = &cobra.Command{
	Use:   "ifcmass",
	Short: "Estimate the mass of a building from its IFC model",
	Long: `ifcmass estimates the total mass of the building elements in an IFC model.

Each element's volume comes from its quantity sets or, failing that, from its
geometry. Volumes are grouped by element type and material, and every material
is given a density from the local cache or, on a miss, from a language model.
Looked-up densities are saved so later runs get cheaper and more stable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closer != nil {
			return closer.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.key, "key", config.DefaultKeyPath, "path to the OpenAI key file ({\"key\": \"...\"})")
	pf.StringVar(&flags.cache, "cache", "", "path to the density cache (default material_densities.json, or the data dir for sqlite)")
	pf.StringVar(&flags.store, "store", config.StoreJSON, "density cache backend: json or sqlite")
	pf.StringVar(&flags.lookup, "lookup", config.LookupOpenAI, "density lookup: openai, ollama, claude or none")
	pf.StringVar(&flags.model, "model", "", "model queried by the density lookup")
	pf.StringVar(&flags.ollamaURL, "ollama-url", config.DefaultOllamaURL, "Ollama server address")
	pf.Float64VarP(&flags.temperature, "temperature", "t", 0, "sampling temperature for density lookups (0-2)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&flags.noGeometry, "no-geometry", false, "use declared volumes only")
	pf.IntVar(&flags.meshCells, "mesh-cells", geometry.DefaultMeshCells, "marching cubes resolution for boolean solids")
}

// setup merges the environment with explicitly set flags and builds the adapters
func setup(cmd *cobra.Command) error {
	config.LoadEnv()
	cfg = config.FromEnv()

	f := cmd.Flags()
	if f.Changed("key") {
		cfg.KeyPath = flags.key
	}
	if f.Changed("cache") {
		cfg.CachePath = flags.cache
	}
	if f.Changed("store") {
		cfg.Store = flags.store
	}
	if f.Changed("lookup") {
		cfg.Lookup = flags.lookup
	}
	if f.Changed("model") {
		cfg.Model = flags.model
	}
	if f.Changed("ollama-url") {
		cfg.OllamaURL = flags.ollamaURL
	}
	if f.Changed("temperature") {
		cfg.Temperature = flags.temperature
	}
	if f.Changed("debug") {
		cfg.Debug = flags.debug
	}

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Debug}))

	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	store, closer, err = config.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open density cache: %w", err)
	}
	lookup = config.NewLookup(cfg)
	return nil
}

func kernelFactory() ports.GeometryKernelFactory {
	if flags.noGeometry {
		return nil
	}
	return geometry.NewFactory(
		ports.GeometrySettings{WorldCoords: true},
		geometry.WithMeshCells(flags.meshCells),
	)
}

func newCalculateCommand(modelPath string) *commands.CalculateCommand {
	calc := commands.NewCalculateCommand(ifc.NewLoader(), kernelFactory(), store, lookup, modelPath)
	calc.Temperature = cfg.Temperature
	return calc
}
