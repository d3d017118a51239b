package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/quocvuong92/gemini-chat/internal/command"
	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/history"
)

// panel draws body inside a rounded border with a bold title line
func panel(title, color, body string) string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", body))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...)
}

// ShowWelcome prints the startup banner
func (d *Display) ShowWelcome(cfg *config.Config) {
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).
			Render(fmt.Sprintf("%s v%s", cfg.AppName(), cfg.AppVersion())),
		"Interactive chat with Gemini AI (" + cfg.Model() + ")",
		dimStyle.Render("Commands: /exit (quit), /clear (clear history), /help (help), /status"),
	}, "\n")
	fmt.Fprintln(d.out, panel("Welcome", "12", body))
	fmt.Fprintln(d.out)
}

// ShowHelp prints the command table followed by the current settings
func (d *Display) ShowHelp(cfg *config.Config) {
	// group literals by kind, preserving table order
	var order []command.Kind
	names := make(map[command.Kind][]string)
	descs := make(map[command.Kind]string)
	for _, l := range command.Literals() {
		if _, seen := names[l.Kind]; !seen {
			order = append(order, l.Kind)
			descs[l.Kind] = l.Description
		}
		names[l.Kind] = append(names[l.Kind], l.Text)
	}

	t := newTable("Command", "Description")
	for _, k := range order {
		t.Row(strings.Join(names[k], ", "), descs[k])
	}
	fmt.Fprintln(d.out, panel("Help", "12", t.String()))

	settings := strings.Join([]string{
		dimStyle.Render("Current settings:"),
		fmt.Sprintf("• Max message length: %d characters", cfg.MaxMessageLength()),
		fmt.Sprintf("• Max history: %d turns", cfg.MaxHistoryLength()),
		fmt.Sprintf("• Temperature: %g", cfg.Temperature()),
		fmt.Sprintf("• Max tokens: %d", cfg.MaxTokens()),
	}, "\n")
	fmt.Fprintln(d.out, panel("Settings", "10", settings))
}

// ShowStatus prints the session status table. The API key is always masked.
func (d *Display) ShowStatus(cfg *config.Config, turns int) {
	t := newTable("Item", "Value").
		Row("App name", cfg.AppName()).
		Row("Version", cfg.AppVersion()).
		Row("Model", cfg.Model()).
		Row("API key", cfg.MaskedAPIKey()).
		Row("History", fmt.Sprintf("%d / %d turns", turns, cfg.MaxHistoryLength())).
		Row("Max message length", fmt.Sprintf("%d characters", cfg.MaxMessageLength())).
		Row("API timeout", cfg.APITimeout().String()).
		Row("Retries", fmt.Sprintf("%d attempts, %s to %s backoff", cfg.RetryAttempts(), cfg.RetryBaseDelay(), cfg.RetryMaxDelay())).
		Row("Log level", cfg.LogLevel().String()).
		Row("Log file", cfg.LogFile())
	fmt.Fprintln(d.out, panel("Status", "14", t.String()))
}

// ShowConversation re-draws the welcome banner and the retained turns
func (d *Display) ShowConversation(cfg *config.Config, turns []history.Turn) {
	d.ShowWelcome(cfg)
	if len(turns) == 0 {
		fmt.Fprintln(d.out, dimStyle.Render("No conversation history yet. Ask Gemini something!"))
		fmt.Fprintln(d.out)
		return
	}

	n := 0
	for _, t := range turns {
		if t.Role == history.RoleUser {
			n++
		}
	}
	i := 0
	for _, t := range turns {
		switch t.Role {
		case history.RoleUser:
			i++
			fmt.Fprintf(d.out, "%s %s\n", userStyle.Render(fmt.Sprintf("You (%d/%d):", i, n)), t.Text)
		case history.RoleAssistant:
			d.ShowReply(t.Text)
			fmt.Fprintln(d.out)
		}
	}
}

// ShowConfigErrors lists every configuration problem with a hint
func (d *Display) ShowConfigErrors(err error) {
	d.ShowError("Configuration errors found:")
	for _, e := range flatten(err) {
		fmt.Fprintf(d.out, "  • %s\n", e.Error())
	}
	fmt.Fprintln(d.out)
	d.ShowWarning("Check your .env file, or run 'init' to create a sample one.")
}

// flatten expands errors.Join results
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
