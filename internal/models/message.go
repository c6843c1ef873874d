package models

import "time"

// MessageType classifies how a payload is delivered to the target session.
type MessageType string

const (
	TypeCommand      MessageType = "command"
	TypeNotification MessageType = "notification"
	TypeData         MessageType = "data"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case TypeCommand, TypeNotification, TypeData:
		return true
	}
	return false
}

// MessageStatus is the delivery lifecycle of a message. A message is created
// Pending and transitions exactly once to Delivered or Failed, then never
// changes again. There are no retries.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusDelivered MessageStatus = "delivered"
	StatusFailed    MessageStatus = "failed"
)

// Message is a single addressed payload. Delivered asserts only that the
// multiplexer primitive succeeded; it makes no claim that the target process
// consumed or acted on the payload.
type Message struct {
	ID          string        `gorm:"primaryKey;size:36"`
	FromSession string        `gorm:"size:128;not null"`
	ToSession   string        `gorm:"size:128;not null;index"`
	Payload     string        `gorm:"type:text"`
	Type        MessageType   `gorm:"size:16;not null"`
	Status      MessageStatus `gorm:"size:16;not null;index"`
	CreatedAt   time.Time
}
