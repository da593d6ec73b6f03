package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"ifcmass/internal/adapters/tui/styles"
	"ifcmass/internal/application/commands"
)

// DensityLister lists the persisted density cache
type DensityLister interface {
	Execute(ctx context.Context) ([]commands.DensityEntry, error)
}

// DensitiesKeyMap defines key bindings for the densities view
type DensitiesKeyMap struct {
	Back   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var DensitiesKeys = DensitiesKeyMap{
	Back: key.NewBinding(
		key.WithKeys("esc", "d"),
		key.WithHelp("esc/d", "back"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// DensitiesModel lists the density cache
type DensitiesModel struct {
	ViewState
	ctx     context.Context
	lister  DensityLister
	table   table.Model
	entries []commands.DensityEntry
	invalid int
}

// NewDensitiesModel creates a new densities model
func NewDensitiesModel(ctx context.Context, lister DensityLister) *DensitiesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Material", Width: 32},
			{Title: "Density [kg/m³]", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(styles.Table())

	return &DensitiesModel{ctx: ctx, lister: lister, table: t}
}

// Init loads the entries
func (m *DensitiesModel) Init() tea.Cmd {
	return m.load
}

func (m *DensitiesModel) load() tea.Msg {
	entries, err := m.lister.Execute(m.ctx)
	return DensitiesLoadedMsg{Entries: entries, Err: err}
}

// Update handles messages for the densities view
func (m *DensitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DensitiesLoadedMsg:
		if msg.Err != nil {
			m.SetMessage(msg.Err.Error(), true)
			return m, nil
		}
		m.ClearMessage()
		m.entries = msg.Entries
		m.invalid = 0
		rows := make([]table.Row, 0, len(msg.Entries))
		for _, e := range msg.Entries {
			density := strconv.Itoa(e.Density)
			if e.Invalid() {
				density = "invalid"
				m.invalid++
			}
			rows = append(rows, table.Row{e.Name, density})
		}
		m.table.SetRows(rows)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DensitiesKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, DensitiesKeys.Back):
			return m, func() tea.Msg { return SwitchToSummaryMsg{} }
		case key.Matches(msg, DensitiesKeys.Reload):
			return m, m.load
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// SetSize updates the view dimensions
func (m *DensitiesModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.table.SetHeight(max(height-9, 3))
}

// View renders the densities view
func (m *DensitiesModel) View() string {
	return newPage("Density cache").
		subtitle(fmt.Sprintf("%d materials, %d invalid", len(m.entries), m.invalid)).
		line(m.table.View()).
		gap().
		status(m.Message, m.MessageErr).
		render(DensitiesKeys.Back, DensitiesKeys.Reload, DensitiesKeys.Quit)
}
