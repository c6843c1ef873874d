// Package dispatch delivers a single payload to one session. Every send is
// recorded as a message whose status moves from pending to exactly one of
// delivered or failed; there are no retries and no re-queues.
package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/davrell/switchboard/internal/announce"
	"github.com/davrell/switchboard/internal/directory"
	"github.com/davrell/switchboard/internal/models"
	"github.com/davrell/switchboard/internal/mux"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDispatchFailed is returned when the multiplexer primitive rejected the
// delivery. The message record is marked failed and surfaced alongside.
var ErrDispatchFailed = errors.New("dispatch failed")

// Dispatcher resolves a target through the directory and delivers payloads
// via the multiplexer.
type Dispatcher struct {
	db        *gorm.DB
	mux       mux.Mux
	dir       *directory.Directory
	dataKey   string
	announcer *announce.Announcer
}

// New creates a Dispatcher. dataKey names the session variable used as the
// single-slot data channel. announcer may be nil.
func New(gdb *gorm.DB, m mux.Mux, dir *directory.Directory, dataKey string, a *announce.Announcer) *Dispatcher {
	if dataKey == "" {
		dataKey = "SB_DATA"
	}
	return &Dispatcher{db: gdb, mux: m, dir: dir, dataKey: dataKey, announcer: a}
}

// Send delivers payload to the session named by to. The target must resolve
// and be live before any record is created; a dead or unknown target fails
// with directory.ErrNotFound and no side effects.
//
// A delivered status asserts only that the multiplexer primitive succeeded.
// It makes no claim that the target process consumed or acted on the payload.
// On delivery failure the persisted message is returned together with an
// error wrapping ErrDispatchFailed.
func (d *Dispatcher) Send(from, to, payload string, typ models.MessageType) (*models.Message, error) {
	if from == "" {
		return nil, fmt.Errorf("dispatch: from is required")
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("dispatch: unknown message type %q", typ)
	}

	target, err := d.dir.Resolve(to)
	if err != nil {
		return nil, err
	}
	if !d.dir.Exists(target) {
		return nil, fmt.Errorf("dispatch: target %q: %w", target, directory.ErrNotFound)
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		FromSession: from,
		ToSession:   target,
		Payload:     payload,
		Type:        typ,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := d.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("dispatch: record message: %w", err)
	}

	deliverErr := d.deliver(target, payload, typ)
	if deliverErr != nil {
		d.setStatus(&msg, models.StatusFailed)
		return &msg, fmt.Errorf("dispatch: %s to %q: %v: %w", typ, target, deliverErr, ErrDispatchFailed)
	}
	d.setStatus(&msg, models.StatusDelivered)
	if typ == models.TypeNotification {
		d.announcer.Notify(&msg)
	}
	return &msg, nil
}

// deliver invokes the multiplexer primitive for the message type. A missing
// notification primitive is a failure, never downgraded to keystrokes.
func (d *Dispatcher) deliver(target, payload string, typ models.MessageType) error {
	switch typ {
	case models.TypeCommand:
		return d.mux.SendKeys(target, payload, true)
	case models.TypeNotification:
		return d.mux.DisplayMessage(target, payload)
	case models.TypeData:
		return d.mux.SetEnv(target, d.dataKey, payload)
	}
	return fmt.Errorf("unknown message type %q", typ)
}

// setStatus records the single terminal transition of a message.
func (d *Dispatcher) setStatus(msg *models.Message, status models.MessageStatus) {
	msg.Status = status
	d.db.Model(&models.Message{}).Where("id = ?", msg.ID).Update("status", status)
}

// Get reads one message by id.
func (d *Dispatcher) Get(id string) (*models.Message, error) {
	var msg models.Message
	if err := d.db.First(&msg, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("dispatch: get %s: %w", id, err)
	}
	return &msg, nil
}

// History returns the most recent messages addressed to a session, newest
// first, up to limit.
func (d *Dispatcher) History(to string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var msgs []models.Message
	q := d.db.Order("created_at DESC").Limit(limit)
	if to != "" {
		q = q.Where("to_session = ?", to)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("dispatch: history: %w", err)
	}
	return msgs, nil
}
