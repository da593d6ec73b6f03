package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"ifcmass/internal/adapters/tui/styles"
)

// Stat is one labelled counter on a stats line
type Stat struct {
	Label string
	Value any
}

// statsLine renders stats as "label value" pairs separated by bullets
func statsLine(stats ...Stat) string {
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, styles.StatLabel.Render(s.Label)+" "+styles.StatValue.Render(fmt.Sprint(s.Value)))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// keyBar renders the short help of each binding on one line
func keyBar(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// page accumulates the sections of a view top to bottom
type page struct {
	sections []string
}

func newPage(title string) *page {
	return &page{sections: []string{styles.Title.Render(title)}}
}

func (p *page) subtitle(text string) *page {
	p.sections = append(p.sections, styles.Subtitle.Render(text), "")
	return p
}

func (p *page) line(text string) *page {
	p.sections = append(p.sections, text)
	return p
}

func (p *page) gap() *page {
	p.sections = append(p.sections, "")
	return p
}

// status adds the view message, if any, styled as error or success
func (p *page) status(message string, isError bool) *page {
	if message == "" {
		return p
	}
	style := styles.Success
	if isError {
		style = styles.ErrorMsg
	}
	p.sections = append(p.sections, style.Render(message), "")
	return p
}

// render closes the page with the key bar and applies the app frame
func (p *page) render(bindings ...key.Binding) string {
	body := strings.Join(append(p.sections, keyBar(bindings...)), "\n")
	return styles.App.Render(body)
}
