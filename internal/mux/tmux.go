package mux

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Tmux is the production implementation that calls the real tmux binary.
type Tmux struct{}

func (Tmux) SessionExists(name string) bool {
	cmd := exec.Command("tmux", "has-session", "-t", name)
	return cmd.Run() == nil
}

func (Tmux) CreateSession(name, workdir string) error {
	args := []string{"new-session", "-d", "-s", name, "-x", "200", "-y", "50"}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	cmd := exec.Command("tmux", args...)
	// Unset TMUX so this works when invoked from inside an existing tmux session.
	cmd.Env = envWithoutTMUX()
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: create session %q: %s: %w", name, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// envWithoutTMUX returns the current environment with the TMUX variable removed,
// allowing tmux new-session to work when called from inside an existing session.
func envWithoutTMUX() []string {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "TMUX=") {
			env = append(env, e)
		}
	}
	return env
}

func (Tmux) KillSession(name string) error {
	cmd := exec.Command("tmux", "kill-session", "-t", name)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: kill session %q: %s: %w", name, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (Tmux) SendKeys(name, text string, enter bool) error {
	args := []string{"send-keys", "-t", name, text}
	if enter {
		args = append(args, "Enter")
	}
	cmd := exec.Command("tmux", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: send keys to %q: %s: %w", name, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (Tmux) CapturePane(name string, lines int) (string, error) {
	if lines <= 0 {
		lines = 50
	}
	cmd := exec.Command("tmux", "capture-pane", "-t", name, "-p",
		"-S", strconv.Itoa(-lines))
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("mux: capture pane %q: %w", name, err)
	}
	return string(out), nil
}

func (Tmux) ListSessions() ([]SessionInfo, error) {
	cmd := exec.Command("tmux", "list-sessions",
		"-F", "#{session_name}\t#{session_windows}\t#{session_attached}")
	out, err := cmd.Output()
	if err != nil {
		// tmux exits non-zero when no server is running; treat as no sessions.
		return nil, nil
	}
	var sessions []SessionInfo
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 || parts[0] == "" {
			continue
		}
		windows, _ := strconv.Atoi(parts[1])
		attached, _ := strconv.Atoi(parts[2])
		sessions = append(sessions, SessionInfo{
			Name:     parts[0],
			Windows:  windows,
			Attached: attached > 0,
		})
	}
	return sessions, nil
}

func (Tmux) NewWindow(session, window, command string) error {
	args := []string{"new-window", "-d", "-t", session, "-n", window}
	if command != "" {
		args = append(args, command)
	}
	cmd := exec.Command("tmux", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: new window %q in %q: %s: %w", window, session, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (Tmux) KillWindow(session, window string) error {
	target := session + ":" + window
	cmd := exec.Command("tmux", "kill-window", "-t", target)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: kill window %q: %s: %w", target, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (Tmux) ListWindows(session string) ([]string, error) {
	cmd := exec.Command("tmux", "list-windows", "-t", session, "-F", "#{window_name}")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("mux: list windows in %q: %s: %w", session, strings.TrimSpace(string(out)), err)
	}
	var windows []string
	for _, l := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			windows = append(windows, l)
		}
	}
	return windows, nil
}

func (Tmux) DisplayMessage(session, text string) error {
	cmd := exec.Command("tmux", "display-message", "-t", session, text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: display message in %q: %s: %w", session, strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (Tmux) SetEnv(session, key, value string) error {
	cmd := exec.Command("tmux", "set-environment", "-t", session, key, value)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mux: set environment %s in %q: %s: %w", key, session, strings.TrimSpace(string(out)), err)
	}
	return nil
}
