package models

import "time"

// TaskStatus is the recorded lifecycle of a background task.
type TaskStatus string

const (
	TaskRunning TaskStatus = "running"
	TaskStopped TaskStatus = "stopped"
)

// BackgroundTask tracks a secondary named window inside a session. The
// (session, window) pair is the task key. Listing filters tasks whose window
// has disappeared, but the row itself is only removed by an explicit stop or
// prune call.
type BackgroundTask struct {
	Session   string     `gorm:"primaryKey;size:128"`
	Window    string     `gorm:"primaryKey;size:64"`
	Command   string     `gorm:"type:text"`
	Type      string     `gorm:"size:32"`
	Status    TaskStatus `gorm:"size:16;not null"`
	StartedAt time.Time
	StoppedAt *time.Time
}
