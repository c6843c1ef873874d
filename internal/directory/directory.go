// Package directory resolves human session names to live multiplexer
// sessions. Liveness is always recomputed against the multiplexer; nothing
// here owns or caches session state.
package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davrell/switchboard/internal/mux"
)

// ErrNotFound is returned when no naming convention resolves to a live session.
var ErrNotFound = errors.New("session not found")

// Directory answers name resolution and liveness questions.
type Directory struct {
	mux      mux.Mux
	prefixes []string
}

// New creates a Directory. prefixes are the alias prefixes tried, in order,
// when the exact name does not exist.
func New(m mux.Mux, prefixes []string) *Directory {
	return &Directory{mux: m, prefixes: prefixes}
}

// Resolve maps a name to a concrete session name by trying a fixed set of
// naming conventions: the exact name, each alias prefix prepended, then the
// lowercased name. The first candidate that exists wins.
func (d *Directory) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("directory: resolve: %w", ErrNotFound)
	}
	for _, candidate := range d.candidates(name) {
		if d.mux.SessionExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("directory: resolve %q: %w", name, ErrNotFound)
}

func (d *Directory) candidates(name string) []string {
	candidates := []string{name}
	for _, prefix := range d.prefixes {
		candidates = append(candidates, prefix+name)
	}
	if lower := strings.ToLower(name); lower != name {
		candidates = append(candidates, lower)
	}
	return candidates
}

// Exists reports whether the name's liveness check succeeds right now.
// Any failure, including an absent session, is false: fail-closed.
func (d *Directory) Exists(name string) bool {
	if name == "" {
		return false
	}
	return d.mux.SessionExists(name)
}

// ListLive returns the live sessions, sampled fresh on each call.
func (d *Directory) ListLive() ([]mux.SessionInfo, error) {
	sessions, err := d.mux.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("directory: list live: %w", err)
	}
	return sessions, nil
}
