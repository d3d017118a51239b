// Package cmd implements the command line interface for gemini-chat.
//
// # Layout
//
//   - root.go: App struct, cobra root command, flags, config and logger setup
//   - commands.go: the status and init subcommands
//   - interactive.go: go-prompt REPL, multiline input, signal handling
//   - slash_commands.go: rendering of each chat session outcome
//
// # Interactive Session
//
// Every input line is classified by the command router and handed to a
// chat.Session. The session owns history and the retry policy; this
// package only draws spinners, replies and errors. A chat error never ends
// the loop. Ctrl+C, Ctrl+D, an exit command, or SIGINT/SIGTERM during a
// request end it with exit status 0.
//
// # Usage
//
//	func main() {
//	    cmd.Execute()
//	}
package cmd
