// Package events announces ledger mutations to other systems.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Event types, also used as AMQP routing keys.
const (
	TypeUserAdded        = "user.added"
	TypeTransactionAdded = "transaction.added"
)

// Event is a lightweight notification; consumers fetch full records through
// the API.
type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	SplitRule     string    `json:"split_rule,omitempty"`
	TotalAmount   string    `json:"total_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// UserAdded builds the event for a newly registered user.
func UserAdded(user *models.User) Event {
	return Event{
		Type:       TypeUserAdded,
		UserID:     user.ID,
		OccurredAt: user.CreatedAt,
	}
}

// TransactionAdded builds the event for a newly recorded transaction.
func TransactionAdded(tx *models.Transaction) Event {
	return Event{
		Type:          TypeTransactionAdded,
		TransactionID: tx.ID,
		SplitRule:     tx.Split.Kind().String(),
		TotalAmount:   tx.TotalAmount().String(),
		OccurredAt:    tx.CreatedAt,
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event published by a Publisher.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
