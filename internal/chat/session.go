// Package chat orchestrates a single interactive conversation: it gates
// message length, records turns, and runs the retried remote call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/quocvuong92/gemini-chat/internal/api"
	"github.com/quocvuong92/gemini-chat/internal/command"
	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/history"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

// State is the session's position in the turn cycle
type State int

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	if s == AwaitingResponse {
		return "AwaitingResponse"
	}
	return "Idle"
}

// Outcome is the result of handling one command
type Outcome struct {
	// Kind is the command that produced this outcome
	Kind command.Kind
	// Exit asks the interactive loop to stop
	Exit  bool
	Reply string
	Err   *Error
}

// Options configures a Session
type Options struct {
	// Config is required
	Config *config.Config
	// Client is required
	Client api.AIClient

	// History defaults to an empty store bounded by Config.MaxHistoryLength
	History history.Recorder
	// Logger defaults to a no-op logger
	Logger *logging.Logger

	// OnRetry is told about each retry before the backoff sleep
	OnRetry func(attempt int, kind ErrorKind, delay time.Duration)
	// Sleep replaces the backoff wait; tests use it to avoid real delays
	Sleep func(ctx context.Context, d time.Duration) error
}

// Session owns the configuration and history for one conversation.
// It is driven by a single goroutine and holds no locks.
type Session struct {
	id      string
	cfg     *config.Config
	history history.Recorder
	client  api.AIClient
	retry   api.RetryPolicy
	logger  *logging.Logger
	onRetry func(attempt int, kind ErrorKind, delay time.Duration)
	state   State
}

// New creates an idle session
func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("chat: config is required")
	}
	if opts.Client == nil {
		return nil, errors.New("chat: client is required")
	}

	id := uuid.New().String()
	s := &Session{
		id:      id,
		cfg:     opts.Config,
		history: opts.History,
		client:  opts.Client,
		logger:  opts.Logger,
		onRetry: opts.OnRetry,
	}
	if s.history == nil {
		s.history = history.New(opts.Config.MaxHistoryLength())
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	s.logger = s.logger.WithFields(logging.Fields{"session": id})

	s.retry = api.RetryPolicy{
		MaxAttempts: opts.Config.RetryAttempts(),
		BaseDelay:   opts.Config.RetryBaseDelay(),
		Multiplier:  api.BackoffMultiplier,
		MaxDelay:    opts.Config.RetryMaxDelay(),
		Timeout:     opts.Config.APITimeout(),
		OnRetry:     s.handleRetry,
		Sleep:       opts.Sleep,
	}

	return s, nil
}

// ID returns the session identifier used in log entries
func (s *Session) ID() string { return s.id }

// Config returns the session configuration
func (s *Session) Config() *config.Config { return s.cfg }

// History returns the conversation history
func (s *Session) History() history.Recorder { return s.history }

// State reports whether a remote call is in flight
func (s *Session) State() State { return s.state }

// Send handles one classified command. Control commands never touch the
// remote client; only Clear mutates history.
func (s *Session) Send(ctx context.Context, cmd command.Command) Outcome {
	switch cmd.Kind {
	case command.Exit:
		s.logger.Info("Session ended by exit command", logging.Fields{"turns": s.history.Len()})
		return Outcome{Kind: command.Exit, Exit: true}

	case command.Clear:
		s.history.Clear()
		s.logger.Info("History cleared")
		return Outcome{Kind: command.Clear}

	case command.Help, command.Status:
		return Outcome{Kind: cmd.Kind}

	case command.Chat:
		if cmd.Text == "" {
			return Outcome{Kind: command.None}
		}
		return s.chat(ctx, cmd.Text)

	default:
		return Outcome{Kind: command.None}
	}
}

func (s *Session) chat(ctx context.Context, text string) Outcome {
	length := utf8.RuneCountInString(text)
	if limit := s.cfg.MaxMessageLength(); length > limit {
		s.logger.Warn("Message rejected", logging.Fields{"chars": length, "limit": limit})
		return Outcome{Kind: command.Chat, Err: &Error{
			Kind:   MessageTooLong,
			Detail: fmt.Sprintf("message is %d characters, the limit is %d", length, limit),
		}}
	}

	req := api.Request{
		History:     s.history.Turns(),
		Prompt:      text,
		Temperature: s.cfg.Temperature(),
		MaxTokens:   s.cfg.MaxTokens(),
	}
	// Recorded before the call: the user did send it, whatever happens next
	s.history.Append(history.NewTurn(history.RoleUser, text))

	s.state = AwaitingResponse
	defer func() { s.state = Idle }()

	s.logger.Info("Sending message", logging.Fields{"chars": length, "context_turns": len(req.History)})
	start := time.Now()

	reply, err := s.retry.Invoke(ctx, func(ctx context.Context) (string, error) {
		return s.client.Generate(ctx, req)
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = &api.Error{Kind: api.KindUnknown, Attempts: 1, Err: api.ErrEmptyResponse}
	}
	if err != nil {
		ce := fromCallError(err)
		fields := logging.Fields{"kind": ce.Kind.String(), "attempts": ce.Attempts}
		if ce.Kind == Unknown {
			s.logger.Error("Chat turn failed", err, fields)
		} else {
			s.logger.Warn("Chat turn failed", fields, logging.Fields{"detail": ce.Detail})
		}
		return Outcome{Kind: command.Chat, Err: ce}
	}

	s.history.Append(history.NewTurn(history.RoleAssistant, reply))
	s.logger.Info("Reply received", logging.Fields{
		"chars":       utf8.RuneCountInString(reply),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Outcome{Kind: command.Chat, Reply: reply}
}

func (s *Session) handleRetry(attempt int, kind api.Kind, delay time.Duration, err error) {
	s.logger.Warn("Retrying remote call", logging.Fields{
		"attempt":  attempt,
		"kind":     kind.String(),
		"delay_ms": delay.Milliseconds(),
		"error":    err.Error(),
	})
	if s.onRetry != nil {
		s.onRetry(attempt, kindFromAPI(kind), delay)
	}
}
