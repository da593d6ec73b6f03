package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"ifcmass/internal/adapters/tui/views"
)

// ViewState represents the current view
type ViewState int

const (
	ViewSummary ViewState = iota
	ViewDensities
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state     ViewState
	summary   *views.SummaryModel
	densities *views.DensitiesModel
	help      *views.HelpModel
}

// NewApp creates a new TUI application
func NewApp(ctx context.Context, calc views.Calculator, lister views.DensityLister) *App {
	return &App{
		state:     ViewSummary,
		summary:   views.NewSummaryModel(ctx, calc),
		densities: views.NewDensitiesModel(ctx, lister),
		help:      views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.summary.Init()
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		for _, v := range []interface{ SetSize(int, int) }{a.summary, a.densities, a.help} {
			v.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case views.SwitchToSummaryMsg:
		a.state = ViewSummary
		return a, nil

	case views.SwitchToDensitiesMsg:
		a.state = ViewDensities
		return a, a.densities.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.CalculatedMsg:
		// A finished run may have added densities
		_, cmd := a.summary.Update(msg)
		if a.state == ViewDensities {
			return a, tea.Batch(cmd, a.densities.Init())
		}
		return a, cmd

	case views.DensitiesLoadedMsg:
		_, cmd := a.densities.Update(msg)
		return a, cmd
	}

	_, cmd := a.active().Update(msg)
	return a, cmd
}

// active returns the model of the current view
func (a *App) active() tea.Model {
	switch a.state {
	case ViewDensities:
		return a.densities
	case ViewHelp:
		return a.help
	default:
		return a.summary
	}
}

// View renders the current view
func (a *App) View() string {
	return a.active().View()
}
