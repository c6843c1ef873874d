// Package relay is the standing streaming service: websocket clients
// subscribe to a session and receive its output as it changes, and can issue
// one-shot multiplexer operations over the same connection.
package relay

import "github.com/davrell/switchboard/internal/mux"

// Client frame actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionExec        = "exec"
	ActionSendKeys    = "send_keys"
	ActionCapture     = "capture"
	ActionList        = "list"
	ActionCreate      = "create"
	ActionKill        = "kill"
)

// ClientFrame is one request from a websocket client.
type ClientFrame struct {
	Action  string `json:"action"`
	Session string `json:"session,omitempty"`
	Command string `json:"command,omitempty"`
	Keys    string `json:"keys,omitempty"`
	Lines   int    `json:"lines,omitempty"`
}

// Server frame types.
const (
	FrameOutput         = "output"
	FrameSubscribed     = "subscribed"
	FrameError          = "error"
	FrameExecResult     = "exec_result"
	FrameCaptureResult  = "capture_result"
	FrameSessionList    = "session_list"
	FrameSessionCreated = "session_created"
	FrameSessionKilled  = "session_killed"
)

// SessionEntry is one session in a session_list frame.
type SessionEntry struct {
	Name     string `json:"name"`
	Windows  int    `json:"windows"`
	Attached bool   `json:"attached"`
}

// ServerFrame is one push or response to a websocket client.
type ServerFrame struct {
	Type     string         `json:"type"`
	Session  string         `json:"session,omitempty"`
	Output   string         `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Sessions []SessionEntry `json:"sessions,omitempty"`
}

func sessionEntries(infos []mux.SessionInfo) []SessionEntry {
	entries := make([]SessionEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, SessionEntry{
			Name:     info.Name,
			Windows:  info.Windows,
			Attached: info.Attached,
		})
	}
	return entries
}
