package models

import "time"

// SubscriptionAction selects the message type used when a published event is
// redelivered to a subscriber.
type SubscriptionAction string

const (
	ActionNotify  SubscriptionAction = "notify"
	ActionCommand SubscriptionAction = "command"
	ActionData    SubscriptionAction = "data"
)

// MessageType maps an action to the dispatch type it produces on fan-out.
// The second return is false for unknown actions.
func (a SubscriptionAction) MessageType() (MessageType, bool) {
	switch a {
	case ActionNotify:
		return TypeNotification, true
	case ActionCommand:
		return TypeCommand, true
	case ActionData:
		return TypeData, true
	}
	return "", false
}

// Subscription is a standing registration on the event bus. Duplicate
// (subscriber, event type) rows are allowed; fan-out resolves them by taking
// the most recently added entry.
type Subscription struct {
	ID         uint               `gorm:"primaryKey;autoIncrement"`
	Subscriber string             `gorm:"size:128;not null;index"`
	EventType  string             `gorm:"size:128;not null;index"`
	Action     SubscriptionAction `gorm:"size:16;not null"`
	CreatedAt  time.Time
}
