// Package label stores free-text tags on sessions. Search filters dead
// sessions at read time; stored label sets stay until explicitly replaced.
package label

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/davrell/switchboard/internal/directory"
	"github.com/davrell/switchboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Index is the session label store.
type Index struct {
	db  *gorm.DB
	dir *directory.Directory
}

// New creates an Index.
func New(gdb *gorm.DB, dir *directory.Directory) *Index {
	return &Index{db: gdb, dir: dir}
}

// Set replaces the full label set for a session. This is a replacement, not
// a merge: labels absent from the new set are gone.
func (i *Index) Set(session string, labels []string) error {
	if session == "" {
		return fmt.Errorf("label: session is required")
	}
	set := dedupe(labels)
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("label: marshal labels for %q: %w", session, err)
	}
	row := models.SessionLabels{
		Session:   session,
		Labels:    string(data),
		UpdatedAt: time.Now(),
	}
	result := i.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session"}},
		DoUpdates: clause.AssignmentColumns([]string{"labels", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("label: set for %q: %w", session, result.Error)
	}
	return nil
}

// Get returns the current label set for a session, or empty when none is
// stored.
func (i *Index) Get(session string) ([]string, error) {
	var row models.SessionLabels
	err := i.db.First(&row, "session = ?", session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("label: get %q: %w", session, err)
	}
	return decode(row.Labels, session)
}

// Search returns every session whose stored label set contains label and
// which is currently live. Dead sessions are excluded even when their label
// record still exists.
func (i *Index) Search(label string) ([]string, error) {
	if label == "" {
		return nil, fmt.Errorf("label: label is required")
	}
	var rows []models.SessionLabels
	if err := i.db.Order("session ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("label: search %q: %w", label, err)
	}

	var sessions []string
	for _, row := range rows {
		labels, err := decode(row.Labels, row.Session)
		if err != nil {
			return nil, err
		}
		if !contains(labels, label) {
			continue
		}
		if !i.dir.Exists(row.Session) {
			continue
		}
		sessions = append(sessions, row.Session)
	}
	return sessions, nil
}

func decode(data, session string) ([]string, error) {
	var labels []string
	if err := json.Unmarshal([]byte(data), &labels); err != nil {
		return nil, fmt.Errorf("label: decode labels for %q: %w", session, err)
	}
	return labels, nil
}

func dedupe(labels []string) []string {
	seen := make(map[string]bool)
	var set []string
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		set = append(set, l)
	}
	sort.Strings(set)
	if set == nil {
		set = []string{}
	}
	return set
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
