// Package display renders everything the user sees: panels, replies,
// errors and the thinking spinner. All output goes to an injectable writer.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/quocvuong92/gemini-chat/internal/chat"
)

// Display writes formatted output
type Display struct {
	out      io.Writer
	render   bool
	markdown *glamour.TermRenderer
	width    int
}

// Options configures a Display
type Options struct {
	// Output defaults to os.Stdout
	Output io.Writer
	// Render enables markdown rendering of replies
	Render bool
	// Width is the word-wrap width for rendered markdown; defaults to 80
	Width int
}

// New creates a Display. If the markdown renderer cannot be built, replies
// fall back to plain text.
func New(opts Options) *Display {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	d := &Display{out: opts.Output, render: opts.Render, width: opts.Width}
	if opts.Render {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(opts.Width),
		); err == nil {
			d.markdown = r
		}
	}
	return d
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// Println writes a plain line
func (d *Display) Println(a ...any) {
	fmt.Fprintln(d.out, a...)
}

// ShowError displays an error message
func (d *Display) ShowError(msg string) {
	fmt.Fprintln(d.out, errorStyle.Render("✗ "+msg))
}

// ShowWarning displays a warning message
func (d *Display) ShowWarning(msg string) {
	fmt.Fprintln(d.out, warningStyle.Render("! "+msg))
}

// ShowInfo displays an informational message
func (d *Display) ShowInfo(msg string) {
	fmt.Fprintln(d.out, infoStyle.Render(msg))
}

// ShowContent displays text as-is
func (d *Display) ShowContent(content string) {
	fmt.Fprintln(d.out, content)
}

// ShowContentRendered displays markdown, falling back to plain text when
// rendering is disabled or fails
func (d *Display) ShowContentRendered(content string) {
	if d.markdown == nil {
		d.ShowContent(content)
		return
	}
	rendered, err := d.markdown.Render(content)
	if err != nil {
		d.ShowContent(content)
		return
	}
	fmt.Fprint(d.out, rendered)
}

// ShowReply displays an assistant reply inside a titled panel
func (d *Display) ShowReply(reply string) {
	body := reply
	if d.markdown != nil {
		if rendered, err := d.markdown.Render(reply); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}
	fmt.Fprintln(d.out, panel("Gemini", "13", body))
}

// ShowChatError prints a kind-specific message for a failed turn
func (d *Display) ShowChatError(err *chat.Error) {
	if err == nil {
		return
	}
	d.ShowError(ChatErrorMessage(err))
}

// ChatErrorMessage returns the user-facing text for a failed turn
func ChatErrorMessage(err *chat.Error) string {
	switch err.Kind {
	case chat.MessageTooLong:
		return "Message too long: " + err.Detail
	case chat.Network:
		return fmt.Sprintf("Network problem: could not reach Gemini after %s. Check your connection and try again.", attempts(err.Attempts))
	case chat.RateLimit:
		return fmt.Sprintf("Rate limited by the Gemini API after %s. Wait a moment and try again.", attempts(err.Attempts))
	case chat.Auth:
		return "Authentication failed: check GEMINI_API_KEY in your .env file."
	case chat.InvalidRequest:
		return "Request rejected by Gemini: " + err.Detail
	default:
		return "Unexpected error: " + err.Detail
	}
}

// ShowRetry tells the user a retry is pending
func (d *Display) ShowRetry(attempt int, kind chat.ErrorKind, delay time.Duration) {
	reason := "Network problem"
	if kind == chat.RateLimit {
		reason = "Rate limited"
	}
	d.ShowWarning(fmt.Sprintf("%s, retrying in %s (attempt %d failed)...", reason, delay.Round(time.Millisecond), attempt))
}

func attempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return fmt.Sprintf("%d attempts", n)
}
