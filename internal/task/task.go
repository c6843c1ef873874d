// Package task tracks secondary named windows running background work inside
// sessions. Listings filter by window liveness at read time; stored records
// are only removed by an explicit stop or prune.
package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/davrell/switchboard/internal/directory"
	"github.com/davrell/switchboard/internal/models"
	"github.com/davrell/switchboard/internal/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyExists is returned when a (session, window) key is already
// registered and its window is still live.
var ErrAlreadyExists = errors.New("task already exists")

// Registry is the background task store.
type Registry struct {
	db  *gorm.DB
	mux mux.Mux
	dir *directory.Directory
}

// New creates a Registry.
func New(gdb *gorm.DB, m mux.Mux, dir *directory.Directory) *Registry {
	return &Registry{db: gdb, mux: m, dir: dir}
}

// Start creates a window named window inside session running command and
// records a running task keyed by (session, window). A registered key whose
// window is still live fails with ErrAlreadyExists; a stale record for a dead
// window is overwritten.
func (r *Registry) Start(session, window, command, taskType string) (*models.BackgroundTask, error) {
	if session == "" {
		return nil, fmt.Errorf("task: session is required")
	}
	if window == "" {
		return nil, fmt.Errorf("task: window is required")
	}
	if command == "" {
		return nil, fmt.Errorf("task: command is required")
	}

	target, err := r.dir.Resolve(session)
	if err != nil {
		return nil, err
	}

	var existing models.BackgroundTask
	err = r.db.First(&existing, "session = ? AND window = ?", target, window).Error
	if err == nil && r.windowLive(target, window) {
		return nil, fmt.Errorf("task: %s/%s: %w", target, window, ErrAlreadyExists)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task: start %s/%s: %w", target, window, err)
	}

	if err := r.mux.NewWindow(target, window, command); err != nil {
		return nil, fmt.Errorf("task: start %s/%s: %w", target, window, err)
	}

	t := models.BackgroundTask{
		Session:   target,
		Window:    window,
		Command:   command,
		Type:      taskType,
		Status:    models.TaskRunning,
		StartedAt: time.Now(),
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session"}, {Name: "window"}},
		DoUpdates: clause.AssignmentColumns([]string{"command", "type", "status", "started_at", "stopped_at"}),
	}).Create(&t)
	if result.Error != nil {
		return nil, fmt.Errorf("task: record %s/%s: %w", target, window, result.Error)
	}
	return &t, nil
}

// List returns registered tasks whose window currently exists, optionally
// filtered to one session. Tasks whose window has disappeared are omitted
// from the listing; their records stay in the store untouched.
func (r *Registry) List(session string) ([]models.BackgroundTask, error) {
	var tasks []models.BackgroundTask
	q := r.db.Order("session ASC, window ASC")
	if session != "" {
		q = q.Where("session = ?", session)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}

	windowsBySession := make(map[string]map[string]bool)
	var live []models.BackgroundTask
	for _, t := range tasks {
		windows, ok := windowsBySession[t.Session]
		if !ok {
			windows = make(map[string]bool)
			// A dead session yields no windows: every task in it filters out.
			if names, err := r.mux.ListWindows(t.Session); err == nil {
				for _, name := range names {
					windows[name] = true
				}
			}
			windowsBySession[t.Session] = windows
		}
		if windows[t.Window] {
			live = append(live, t)
		}
	}
	return live, nil
}

// Stop destroys the task's window and records the stop time. A window that
// already disappeared still gets its record marked stopped.
func (r *Registry) Stop(session, window string) error {
	var t models.BackgroundTask
	if err := r.db.First(&t, "session = ? AND window = ?", session, window).Error; err != nil {
		return fmt.Errorf("task: stop %s/%s: %w", session, window, err)
	}

	if err := r.mux.KillWindow(session, window); err != nil && r.windowLive(session, window) {
		return fmt.Errorf("task: stop %s/%s: %w", session, window, err)
	}

	now := time.Now()
	result := r.db.Model(&models.BackgroundTask{}).
		Where("session = ? AND window = ?", session, window).
		Updates(map[string]interface{}{
			"status":     models.TaskStopped,
			"stopped_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("task: stop %s/%s: %w", session, window, result.Error)
	}
	return nil
}

// Prune deletes records whose window no longer exists, optionally scoped to
// one session. This is the explicit cleanup call; List never deletes.
func (r *Registry) Prune(session string) (int64, error) {
	var tasks []models.BackgroundTask
	q := r.db
	if session != "" {
		q = q.Where("session = ?", session)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return 0, fmt.Errorf("task: prune: %w", err)
	}

	var pruned int64
	for _, t := range tasks {
		if r.windowLive(t.Session, t.Window) {
			continue
		}
		result := r.db.Where("session = ? AND window = ?", t.Session, t.Window).
			Delete(&models.BackgroundTask{})
		if result.Error != nil {
			return pruned, fmt.Errorf("task: prune %s/%s: %w", t.Session, t.Window, result.Error)
		}
		pruned += result.RowsAffected
	}
	return pruned, nil
}

// windowLive reports whether the window currently exists. Any listing failure
// counts as dead: fail-closed.
func (r *Registry) windowLive(session, window string) bool {
	windows, err := r.mux.ListWindows(session)
	if err != nil {
		return false
	}
	for _, name := range windows {
		if name == window {
			return true
		}
	}
	return false
}
