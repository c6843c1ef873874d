// Package mux abstracts the terminal multiplexer (tmux) behind a small
// capability interface so the rest of switchboard never shells out directly.
package mux

// SessionInfo describes one live multiplexer session.
type SessionInfo struct {
	Name     string
	Windows  int
	Attached bool
}

// Mux is the set of multiplexer operations switchboard consumes. Implemented
// by Tmux in production and by Fake in tests.
type Mux interface {
	SessionExists(name string) bool
	CreateSession(name, workdir string) error
	KillSession(name string) error
	// SendKeys forwards text as keystrokes. When enter is true the input is
	// terminated with an execute signal.
	SendKeys(name, text string, enter bool) error
	// CapturePane returns the last lines of the session's visible output.
	CapturePane(name string, lines int) (string, error)
	ListSessions() ([]SessionInfo, error)
	NewWindow(session, window, command string) error
	KillWindow(session, window string) error
	ListWindows(session string) ([]string, error)
	// DisplayMessage shows an ephemeral banner inside the session.
	DisplayMessage(session, text string) error
	// SetEnv writes a session-scoped variable. Last write wins; the target
	// consumes it out-of-band.
	SetEnv(session, key, value string) error
}
