package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"ifcmass/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

type helpSection struct {
	name     string
	bindings []key.Binding
}

func helpSections() []helpSection {
	return []helpSection{
		{"Summary", []key.Binding{SummaryKeys.Up, SummaryKeys.Down, SummaryKeys.Copy, SummaryKeys.Recompute, SummaryKeys.Densities}},
		{"Density cache", []key.Binding{DensitiesKeys.Back, DensitiesKeys.Reload}},
		{"General", []key.Binding{SummaryKeys.Help, SummaryKeys.Quit}},
	}
}

// HelpModel lists every binding of the viewer
type HelpModel struct {
	ViewState
}

func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

func (m *HelpModel) Init() tea.Cmd {
	return nil
}

func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, HelpKeys.Close) {
		return m, func() tea.Msg {
			return SwitchToSummaryMsg{}
		}
	}
	return m, nil
}

func (m *HelpModel) View() string {
	p := newPage("ifcmass Help").subtitle("Building mass from IFC models")

	for _, s := range helpSections() {
		p.line(styles.Section.Render(s.name))
		for _, b := range s.bindings {
			h := b.Help()
			p.line(fmt.Sprintf("  %s%s", styles.HelpKey.Render(fmt.Sprintf("%-12s", h.Key)), styles.HelpDesc.Render(h.Desc)))
		}
		p.gap()
	}

	p.line(styles.Section.Render("Reading the table"))
	p.line(styles.MutedText.Render(strings.Join([]string{
		"  Volumes are in m³, masses in kg.",
		"  Rows marked - have no known density and add nothing to the total.",
	}, "\n"))).gap()

	return p.render(HelpKeys.Close)
}
