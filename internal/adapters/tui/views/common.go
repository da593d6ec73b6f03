package views

import "ifcmass/internal/application/commands"

// ViewState holds the size and status message every view carries
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets the status line
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the status line
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// SwitchToSummaryMsg returns to the mass summary
type SwitchToSummaryMsg struct{}

// SwitchToDensitiesMsg opens the density cache view
type SwitchToDensitiesMsg struct{}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// CalculatedMsg carries a finished calculation. Err may be set together
// with Result when the run completed but the cache could not be saved.
type CalculatedMsg struct {
	Result *commands.CalculateResult
	Err    error
}

// DensitiesLoadedMsg carries the persisted density entries
type DensitiesLoadedMsg struct {
	Entries []commands.DensityEntry
	Err     error
}
