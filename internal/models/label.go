package models

import "time"

// SessionLabels holds the free-text tags attached to one session. Labels are
// stored as a JSON array; a write replaces the whole set, never merges.
type SessionLabels struct {
	Session   string `gorm:"primaryKey;size:128"`
	Labels    string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
