package cmd

import (
	"github.com/quocvuong92/gemini-chat/internal/chat"
	"github.com/quocvuong92/gemini-chat/internal/command"
)

// handleOutcome renders the result of one submitted line.
// Chat errors are reported for the current turn only; the loop keeps going.
func (s *InteractiveSession) handleOutcome(out chat.Outcome) {
	cfg := s.session.Config()

	switch out.Kind {
	case command.Exit:
		s.shutdown("exit")

	case command.Clear:
		s.disp.ShowConversation(cfg, s.session.History().Turns())
		s.disp.ShowInfo("Conversation history cleared.")

	case command.Help:
		s.disp.ShowHelp(cfg)

	case command.Status:
		s.disp.ShowStatus(cfg, s.session.History().Len())

	case command.Chat:
		if out.Err != nil {
			s.disp.ShowChatError(out.Err)
			return
		}
		s.disp.ShowReply(out.Reply)
	}
}
