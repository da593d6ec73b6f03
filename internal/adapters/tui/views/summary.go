package views

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"ifcmass/internal/adapters/report"
	"ifcmass/internal/adapters/tui/styles"
	"ifcmass/internal/application/commands"
	"ifcmass/internal/domain"
)

// Calculator runs a mass calculation
type Calculator interface {
	Execute(ctx context.Context) (*commands.CalculateResult, error)
}

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// SummaryKeyMap defines key bindings for the summary view
type SummaryKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	Recompute key.Binding
	Densities key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var SummaryKeys = SummaryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy csv"),
	),
	Recompute: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "recompute"),
	),
	Densities: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "densities"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// SummaryModel shows the mass summary of one model
type SummaryModel struct {
	ViewState
	ctx     context.Context
	calc    Calculator
	table   table.Model
	result  *commands.CalculateResult
	loading bool
}

// NewSummaryModel creates a new summary model
func NewSummaryModel(ctx context.Context, calc Calculator) *SummaryModel {
	t := table.New(
		table.WithColumns(summaryColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(styles.Table())

	return &SummaryModel{
		ctx:     ctx,
		calc:    calc,
		table:   t,
		loading: true,
	}
}

func summaryColumns(width int) []table.Column {
	// Element and Material share what the numeric columns leave over
	rest := max(width-2*14-12, 30)
	return []table.Column{
		{Title: report.Headers[0], Width: rest / 2},
		{Title: report.Headers[1], Width: rest - rest/2},
		{Title: report.Headers[2], Width: 14},
		{Title: report.Headers[3], Width: 14},
	}
}

// Init starts the calculation
func (m *SummaryModel) Init() tea.Cmd {
	return m.calculate
}

func (m *SummaryModel) calculate() tea.Msg {
	result, err := m.calc.Execute(m.ctx)
	return CalculatedMsg{Result: result, Err: err}
}

// Result returns the last calculation, or nil
func (m *SummaryModel) Result() *commands.CalculateResult {
	return m.result
}

// Update handles messages for the summary view
func (m *SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CalculatedMsg:
		m.loading = false
		if msg.Result != nil {
			m.result = msg.Result
			m.table.SetRows(summaryRows(msg.Result.Mass))
		}
		if msg.Err != nil {
			m.SetMessage(msg.Err.Error(), true)
		} else {
			m.ClearMessage()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SummaryKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, SummaryKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		case key.Matches(msg, SummaryKeys.Densities):
			return m, func() tea.Msg { return SwitchToDensitiesMsg{} }
		case key.Matches(msg, SummaryKeys.Recompute):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.SetMessage("Recomputing...", false)
			return m, m.calculate
		case key.Matches(msg, SummaryKeys.Copy):
			m.copySummary()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *SummaryModel) copySummary() {
	if m.result == nil {
		m.SetMessage("Nothing to copy yet", true)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, m.result.Mass); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	if err := writeClipboard(buf.String()); err != nil {
		m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.SetMessage(fmt.Sprintf("Copied %d rows as CSV", len(m.result.Mass.Rows)), false)
}

func summaryRows(m *domain.MassSummary) []table.Row {
	s := report.FromMass(m)
	rows := make([]table.Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		mass := "-"
		if r.Mass != nil {
			mass = strconv.FormatFloat(*r.Mass, 'f', -1, 64)
		}
		rows = append(rows, table.Row{
			r.Element,
			r.Material,
			strconv.FormatFloat(r.Volume, 'f', -1, 64),
			mass,
		})
	}
	return rows
}

// SetSize updates the view dimensions
func (m *SummaryModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.table.SetColumns(summaryColumns(width - 4))
	// Title, subtitle, stats, total, message and help take about 12 lines
	m.table.SetHeight(max(height-12, 3))
}

// View renders the summary view
func (m *SummaryModel) View() string {
	p := newPage("Mass summary")

	if m.result == nil {
		if m.loading {
			p.subtitle("Calculating...")
		}
		return p.status(m.Message, m.MessageErr).render(SummaryKeys.Quit)
	}

	r := m.result
	unit := string(r.Unit)
	if unit == "" {
		unit = "unspecified"
	}
	p.subtitle(fmt.Sprintf("%s • %s • %s", r.ModelPath, r.Schema, strings.ToLower(unit)))

	p.line(m.table.View()).gap()
	p.line(statsLine(
		Stat{"elements", r.Stats.Elements},
		Stat{"declared", r.Stats.Declared},
		Stat{"computed", r.Stats.Computed},
		Stat{"no volume", r.Stats.NoVolume},
		Stat{"densities", r.CacheSize},
	))
	if len(r.Stats.SkippedTypes) > 0 {
		p.line(styles.Skipped.Render("not in schema: " + strings.Join(r.Stats.SkippedTypes, ", ")))
	}
	if unresolved := r.Mass.Unresolved(); len(unresolved) > 0 {
		p.line(styles.MutedText.Render(fmt.Sprintf("%d rows without density", len(unresolved))))
	}
	p.gap()
	p.line(styles.Total.Render(report.TotalLine(r.Mass.TotalMass))).gap()

	return p.status(m.Message, m.MessageErr).
		render(SummaryKeys.Up, SummaryKeys.Down, SummaryKeys.Copy, SummaryKeys.Recompute,
			SummaryKeys.Densities, SummaryKeys.Help, SummaryKeys.Quit)
}
