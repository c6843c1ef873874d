// Package eventbus maintains the subscription table and fans published
// events out through the dispatcher.
package eventbus

import (
	"errors"
	"fmt"

	"github.com/davrell/switchboard/internal/dispatch"
	"github.com/davrell/switchboard/internal/models"
	"gorm.io/gorm"
)

// ErrUnknownAction marks a subscription entry whose action cannot be mapped
// to a message type. Fan-out skips the entry and continues.
var ErrUnknownAction = errors.New("unknown subscription action")

// Bus is the subscription table plus publish fan-out.
type Bus struct {
	db         *gorm.DB
	dispatcher *dispatch.Dispatcher
}

// New creates a Bus on top of the given store and dispatcher.
func New(gdb *gorm.DB, d *dispatch.Dispatcher) *Bus {
	return &Bus{db: gdb, dispatcher: d}
}

// Subscribe appends a subscription. Duplicate (subscriber, event type) rows
// are allowed; no dedup is enforced.
func (b *Bus) Subscribe(subscriber, eventType string, action models.SubscriptionAction) (*models.Subscription, error) {
	if subscriber == "" {
		return nil, fmt.Errorf("eventbus: subscriber is required")
	}
	if eventType == "" {
		return nil, fmt.Errorf("eventbus: event type is required")
	}
	if _, ok := action.MessageType(); !ok {
		return nil, fmt.Errorf("eventbus: %w: %q", ErrUnknownAction, action)
	}
	sub := models.Subscription{
		Subscriber: subscriber,
		EventType:  eventType,
		Action:     action,
	}
	if err := b.db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("eventbus: subscribe: %w", err)
	}
	return &sub, nil
}

// Unsubscribe removes every subscription matching (subscriber, eventType)
// and returns how many were removed. Removing zero is not an error.
func (b *Bus) Unsubscribe(subscriber, eventType string) (int64, error) {
	result := b.db.Where("subscriber = ? AND event_type = ?", subscriber, eventType).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return 0, fmt.Errorf("eventbus: unsubscribe: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// List returns every subscription, newest first.
func (b *Bus) List() ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := b.db.Order("id DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("eventbus: list: %w", err)
	}
	return subs, nil
}

// PublishResult records the outcome of one subscriber's fan-out delivery.
type PublishResult struct {
	Subscriber string
	Message    *models.Message
	Err        error
}

// Publish dispatches data to every subscriber of eventType. When a subscriber
// holds duplicate entries the most recently added one wins; entries with an
// unmappable action are skipped and the next most recent is tried. Each
// subscriber receives exactly one send; a failed send is recorded in its
// result and never aborts the rest of the fan-out. Zero matching subscribers
// is a successful no-op.
func (b *Bus) Publish(publisher, eventType, data string) ([]PublishResult, error) {
	var subs []models.Subscription
	if err := b.db.Where("event_type = ?", eventType).
		Order("id DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("eventbus: publish %q: %w", eventType, err)
	}

	var results []PublishResult
	chosen := make(map[string]bool)
	for _, sub := range subs {
		if chosen[sub.Subscriber] {
			continue
		}
		typ, ok := sub.Action.MessageType()
		if !ok {
			// Malformed entry: skip it, keep looking at this subscriber's
			// older entries.
			results = append(results, PublishResult{
				Subscriber: sub.Subscriber,
				Err:        fmt.Errorf("eventbus: subscription %d: %w: %q", sub.ID, ErrUnknownAction, sub.Action),
			})
			continue
		}
		chosen[sub.Subscriber] = true
		msg, err := b.dispatcher.Send(publisher, sub.Subscriber, data, typ)
		results = append(results, PublishResult{
			Subscriber: sub.Subscriber,
			Message:    msg,
			Err:        err,
		})
	}
	return results, nil
}
