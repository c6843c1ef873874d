package models

import "time"

// Workflow is a named, ordered list of cross-session command steps, replayed
// on demand. Steps are stored as a JSON array; the row is immutable except by
// full replacement.
type Workflow struct {
	Name      string `gorm:"primaryKey;size:64"`
	Steps     string `gorm:"type:text;not null"`
	Schedule  string `gorm:"size:64"` // optional 5-field cron expression
	CreatedAt time.Time
	UpdatedAt time.Time
}
