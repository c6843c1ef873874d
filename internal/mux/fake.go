package mux

import (
	"fmt"
	"sort"
	"sync"
)

// Fake implements Mux in memory for testing. It records every primitive call
// and allows injecting failures per session via FailDisplay, FailSendKeys and
// FailCapture.
type Fake struct {
	mu       sync.Mutex
	sessions map[string]*fakeSession

	// Failure injection: session names whose primitive calls should fail.
	FailDisplay  map[string]bool
	FailSendKeys map[string]bool
	FailCapture  map[string]bool
}

type fakeSession struct {
	workdir  string
	output   string
	keys     []string
	banners  []string
	env      map[string]string
	windows  map[string]string // window name -> command
	attached bool
}

// NewFake creates an empty Fake multiplexer.
func NewFake() *Fake {
	return &Fake{
		sessions:     make(map[string]*fakeSession),
		FailDisplay:  make(map[string]bool),
		FailSendKeys: make(map[string]bool),
		FailCapture:  make(map[string]bool),
	}
}

// AddSession registers a live session without going through CreateSession.
func (f *Fake) AddSession(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure(name)
}

// SetOutput sets the visible output returned by CapturePane for a session.
func (f *Fake) SetOutput(name, output string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensure(name).output = output
}

// SentKeys returns every SendKeys payload recorded for a session.
func (f *Fake) SentKeys(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[name]; ok {
		return append([]string(nil), s.keys...)
	}
	return nil
}

// Banners returns every DisplayMessage payload recorded for a session.
func (f *Fake) Banners(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[name]; ok {
		return append([]string(nil), s.banners...)
	}
	return nil
}

// Env returns the current value of a session-scoped variable.
func (f *Fake) Env(name, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[name]; ok {
		return s.env[key]
	}
	return ""
}

func (f *Fake) ensure(name string) *fakeSession {
	s, ok := f.sessions[name]
	if !ok {
		s = &fakeSession{
			env:     make(map[string]string),
			windows: make(map[string]string),
		}
		f.sessions[name] = s
	}
	return s
}

func (f *Fake) SessionExists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[name]
	return ok
}

func (f *Fake) CreateSession(name, workdir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[name]; ok {
		return fmt.Errorf("mux: create session %q: duplicate session", name)
	}
	f.ensure(name).workdir = workdir
	return nil
}

func (f *Fake) KillSession(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[name]; !ok {
		return fmt.Errorf("mux: kill session %q: no such session", name)
	}
	delete(f.sessions, name)
	return nil
}

func (f *Fake) SendKeys(name, text string, enter bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSendKeys[name] {
		return fmt.Errorf("mux: send keys to %q: injected failure", name)
	}
	s, ok := f.sessions[name]
	if !ok {
		return fmt.Errorf("mux: send keys to %q: no such session", name)
	}
	s.keys = append(s.keys, text)
	return nil
}

func (f *Fake) CapturePane(name string, lines int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCapture[name] {
		return "", fmt.Errorf("mux: capture pane %q: injected failure", name)
	}
	s, ok := f.sessions[name]
	if !ok {
		return "", fmt.Errorf("mux: capture pane %q: no such session", name)
	}
	return s.output, nil
}

func (f *Fake) ListSessions() ([]SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sessions))
	for name := range f.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	var infos []SessionInfo
	for _, name := range names {
		s := f.sessions[name]
		infos = append(infos, SessionInfo{
			Name:     name,
			Windows:  1 + len(s.windows),
			Attached: s.attached,
		})
	}
	return infos, nil
}

func (f *Fake) NewWindow(session, window, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[session]
	if !ok {
		return fmt.Errorf("mux: new window %q in %q: no such session", window, session)
	}
	s.windows[window] = command
	return nil
}

func (f *Fake) KillWindow(session, window string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[session]
	if !ok {
		return fmt.Errorf("mux: kill window %q: no such session %q", window, session)
	}
	if _, ok := s.windows[window]; !ok {
		return fmt.Errorf("mux: kill window %q: no such window in %q", window, session)
	}
	delete(s.windows, window)
	return nil
}

func (f *Fake) ListWindows(session string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[session]
	if !ok {
		return nil, fmt.Errorf("mux: list windows in %q: no such session", session)
	}
	windows := make([]string, 0, len(s.windows))
	for name := range s.windows {
		windows = append(windows, name)
	}
	sort.Strings(windows)
	return windows, nil
}

func (f *Fake) DisplayMessage(session, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDisplay[session] {
		return fmt.Errorf("mux: display message in %q: injected failure", session)
	}
	s, ok := f.sessions[session]
	if !ok {
		return fmt.Errorf("mux: display message in %q: no such session", session)
	}
	s.banners = append(s.banners, text)
	return nil
}

func (f *Fake) SetEnv(session, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[session]
	if !ok {
		return fmt.Errorf("mux: set environment %s in %q: no such session", key, session)
	}
	s.env[key] = value
	return nil
}
