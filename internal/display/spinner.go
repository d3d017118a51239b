package display

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress while waiting for the model
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner writing to the display output.
// It stays silent when stdout is not a terminal.
func (d *Display) NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(d.out),
		spinner.WithSuffix(" "+msg),
		spinner.WithColor("magenta"),
	)
	return &Spinner{s: s}
}

// Start begins animating
func (sp *Spinner) Start() {
	sp.s.Start()
}

// Stop halts the animation and clears the line
func (sp *Spinner) Stop() {
	sp.s.Stop()
}
