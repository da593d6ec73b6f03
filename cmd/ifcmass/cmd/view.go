package cmd

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ifcmass/internal/adapters/tui"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/logger"
	"ifcmass/internal/logger/console"
)

var viewCmd = &cobra.Command{
	Use:   "view <model.ifc>",
	Short: "Browse the mass summary interactively",
	Long: `Calculate the mass of a model and browse the summary in a terminal UI.
The summary can be copied as CSV, recomputed, and the density cache inspected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines would tear the alternate screen
		var out io.Writer = io.Discard
		if cfg.Debug {
			f, err := tea.LogToFile("ifcmass-debug.log", "")
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Debug, Output: out}))

		app := tui.NewApp(
			context.Background(),
			newCalculateCommand(args[0]),
			commands.NewListDensitiesCommand(store),
		)

		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
