package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/gemini-chat/internal/api"
	"github.com/quocvuong92/gemini-chat/internal/chat"
	"github.com/quocvuong92/gemini-chat/internal/command"
	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/display"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

// InteractiveSession holds the state for an interactive chat session.
// It feeds input lines to the chat session and renders each outcome.
type InteractiveSession struct {
	ctx         context.Context
	session     *chat.Session
	disp        *display.Display
	logger      *logging.Logger
	exitFlag    bool
	inputBuffer []string // Buffer for multiline input
	spinner     *display.Spinner
}

// newInteractiveSession wires a chat session to the display
func newInteractiveSession(ctx context.Context, cfg *config.Config, client api.AIClient, disp *display.Display, logger *logging.Logger) (*InteractiveSession, error) {
	s := &InteractiveSession{ctx: ctx, disp: disp, logger: logger}

	session, err := chat.New(chat.Options{
		Config:  cfg,
		Client:  client,
		Logger:  logger,
		OnRetry: s.showRetry,
	})
	if err != nil {
		return nil, err
	}
	s.session = session
	s.logger = logger.WithFields(logging.Fields{"session": session.ID()})
	return s, nil
}

// completer provides auto-completion suggestions for control commands.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	// Only show suggestions when input starts with "/"
	if !strings.HasPrefix(text, "/") || strings.Contains(text, " ") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	var suggestions []prompt.Suggest
	for _, l := range command.Literals() {
		if strings.HasPrefix(l.Text, "/") {
			suggestions = append(suggestions, prompt.Suggest{Text: l.Text, Description: l.Description})
		}
	}
	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

// runInteractive starts the REPL and blocks until the user exits.
func (app *App) runInteractive(ctx context.Context, cfg *config.Config, client api.AIClient, disp *display.Display, logger *logging.Logger) error {
	session, err := newInteractiveSession(ctx, cfg, client, disp, logger)
	if err != nil {
		return err
	}

	disp.ShowWelcome(cfg)
	disp.ShowInfo("Commands auto-complete as you type. End a line with \\ for multiline input.")
	disp.Println()

	p := prompt.New(
		session.executor,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("You > "),
		prompt.WithTitle(cfg.AppName()),
		prompt.WithPrefixTextColor(prompt.Blue),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				session.shutdown("ctrl+c")
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					session.shutdown("ctrl+d")
				}
				return false
			},
		}),
	)

	p.Run()
	return nil
}

// executor handles the execution of each input line in the REPL.
// Lines ending in a backslash are buffered and joined with the next line.
func (s *InteractiveSession) executor(input string) {
	// Check if we should exit
	if s.exitFlag {
		return
	}

	// Handle multiline input with backslash continuation
	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		s.disp.ShowContent("... ")
		return
	}

	// If we have buffered lines, combine them with current input
	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, "\n")
		s.inputBuffer = nil
	}

	cmd := command.Classify(input)
	if cmd.Kind == command.None {
		return
	}

	if cmd.Kind == command.Chat {
		s.spinner = s.disp.NewSpinner("Gemini is thinking...")
		s.spinner.Start()
	}

	// A signal during the call ends the session; the prompt is not in raw mode here
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	outcome := s.session.Send(ctx, cmd)
	interrupted := ctx.Err() != nil && s.ctx.Err() == nil
	stop()

	if s.spinner != nil {
		s.spinner.Stop()
		s.spinner = nil
	}

	if interrupted {
		s.disp.ShowWarning("Termination signal received, exiting safely...")
		s.shutdown("signal")
		return
	}

	s.handleOutcome(outcome)
}

// showRetry tells the user a retry is pending without garbling the spinner line
func (s *InteractiveSession) showRetry(attempt int, kind chat.ErrorKind, delay time.Duration) {
	if s.spinner != nil {
		s.spinner.Stop()
		defer s.spinner.Start()
	}
	s.disp.ShowRetry(attempt, kind, delay)
}

// shutdown prints the farewell and marks the loop for exit
func (s *InteractiveSession) shutdown(reason string) {
	if s.exitFlag {
		return
	}
	s.logger.Info("Session ended", logging.Fields{"reason": reason, "turns": s.session.History().Len()})
	s.disp.Println()
	s.disp.ShowInfo("Goodbye!")
	s.exitFlag = true
}
