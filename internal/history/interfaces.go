// Package history holds the bounded, in-memory conversation record for an
// interactive session. Nothing is persisted across restarts.
package history

// Recorder defines the interface the chat session uses to read and mutate
// conversation history. This interface enables dependency injection and easier testing.
type Recorder interface {
	// Append adds a turn at the end, evicting the oldest turns past the limit
	Append(turn Turn)

	// Clear removes every turn
	Clear()

	// Turns returns a snapshot of the retained turns, oldest first
	Turns() []Turn

	// Len returns the number of retained turns
	Len() int

	// Limit returns the maximum number of retained turns
	Limit() int
}

// Ensure concrete type implements the interface
var _ Recorder = (*Store)(nil)
