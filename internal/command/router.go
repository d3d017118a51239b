// Package command classifies raw input lines into control commands or chat messages.
package command

import "strings"

// Kind identifies the variant of a Command
type Kind int

const (
	// None is a blank line; nothing happens
	None Kind = iota
	Exit
	Clear
	Help
	Status
	// Chat carries user text destined for the model
	Chat
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Exit:
		return "exit"
	case Clear:
		return "clear"
	case Help:
		return "help"
	case Status:
		return "status"
	case Chat:
		return "chat"
	default:
		return "unknown"
	}
}

// Command is the classified form of one input line.
// Text is set only when Kind is Chat.
type Command struct {
	Kind Kind
	Text string
}

// Literal is a reserved input recognized as a control command
type Literal struct {
	Text        string
	Kind        Kind
	Description string
}

// literals is the full control-command table; matching is exact after trimming, ignoring case.
var literals = []Literal{
	{"/exit", Exit, "Exit the chat"},
	{"exit", Exit, "Exit the chat"},
	{"/quit", Exit, "Exit the chat"},
	{"quit", Exit, "Exit the chat"},
	{"/clear", Clear, "Clear conversation history"},
	{"/help", Help, "Show available commands"},
	{"help", Help, "Show available commands"},
	{"/status", Status, "Show session status"},
}

var byText = func() map[string]Kind {
	m := make(map[string]Kind, len(literals))
	for _, l := range literals {
		m[l.Text] = l.Kind
	}
	return m
}()

// Classify maps a raw input line to exactly one Command.
// "exit now" is chat; "  EXIT  " is Exit.
func Classify(line string) Command {
	text := strings.TrimSpace(line)
	if text == "" {
		return Command{Kind: None}
	}
	if kind, ok := byText[strings.ToLower(text)]; ok {
		return Command{Kind: kind}
	}
	return Command{Kind: Chat, Text: text}
}

// Literals returns a copy of the control-command table, in display order
func Literals() []Literal {
	out := make([]Literal, len(literals))
	copy(out, literals)
	return out
}
