package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ifcmass/internal/domain"
)

// Format selects how a summary is written
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name. The empty string selects the table.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv or json)", s)
	}
}

// Headers are the summary column titles
var Headers = []string{"Element", "Material", "Volume [m³]", "Mass [kg]"}

// Row is one presented summary row. Values are rounded to three decimals.
type Row struct {
	Element  string   `json:"element"`
	Material string   `json:"material"`
	Volume   float64  `json:"volume_m3"`
	Density  *int     `json:"density_kg_m3,omitempty"`
	Mass     *float64 `json:"mass_kg,omitempty"`
}

// Summary is the presented form of a mass calculation
type Summary struct {
	Rows      []Row   `json:"rows"`
	TotalMass float64 `json:"total_mass_kg"`
}

// FromMass converts a mass summary for presentation
func FromMass(m *domain.MassSummary) Summary {
	out := Summary{
		Rows:      make([]Row, 0, len(m.Rows)),
		TotalMass: domain.Round3(m.TotalMass),
	}
	for _, r := range m.Rows {
		row := Row{
			Element:  r.ElementType,
			Material: r.Material,
			Volume:   domain.Round3(r.Volume),
		}
		if r.Resolved {
			density := r.Density
			mass := domain.Round3(r.Mass)
			row.Density = &density
			row.Mass = &mass
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Write renders m to w in the given format
func Write(w io.Writer, m *domain.MassSummary, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, m)
	case FormatJSON:
		return WriteJSON(w, m)
	default:
		return WriteTable(w, m)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = numberStyle.Foreground(lipgloss.Color("#6B7280"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
)

// WriteTable renders the summary as a terminal table followed by the total
func WriteTable(w io.Writer, m *domain.MassSummary) error {
	s := FromMass(m)

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{r.Element, r.Material, formatNumber(r.Volume), formatMass(r.Mass)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2 && rows[row][col] == "-":
				return mutedStyle
			case col >= 2:
				return numberStyle
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, totalStyle.Render(TotalLine(m.TotalMass)))
	return err
}

// TotalLine formats the whole-model mass
func TotalLine(total float64) string {
	return fmt.Sprintf("Whole mass: %s kg", formatNumber(domain.Round3(total)))
}

// WriteCSV writes the summary rows with a header. Unresolved rows leave the
// mass column empty.
func WriteCSV(w io.Writer, m *domain.MassSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, r := range FromMass(m).Rows {
		mass := ""
		if r.Mass != nil {
			mass = formatNumber(*r.Mass)
		}
		if err := cw.Write([]string{r.Element, r.Material, formatNumber(r.Volume), mass}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the summary as an indented JSON document
func WriteJSON(w io.Writer, m *domain.MassSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromMass(m))
}

// AppendTotal writes one run total as a single-column CSV row
func AppendTotal(w io.Writer, total float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{strconv.FormatFloat(total, 'f', -1, 64)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMass(m *float64) string {
	if m == nil {
		return "-"
	}
	return formatNumber(*m)
}
