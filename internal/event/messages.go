package event

import (
	"encoding/json"
	"time"
)

// Action identifies what happened to a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// RecordEvent is the change-feed message published after every
// successful ledger mutation. It carries enough to audit the change
// without a round trip to the store.
type RecordEvent struct {
	Action     Action    `json:"action"`
	ID         int64     `json:"id"`
	RecordID   string    `json:"recordId"`
	Amount     float64   `json:"amount"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewRecordEvent stamps an event with the current time.
func NewRecordEvent(action Action, id int64, recordID string, amount float64, category string) *RecordEvent {
	return &RecordEvent{
		Action:     action,
		ID:         id,
		RecordID:   recordID,
		Amount:     amount,
		Category:   category,
		OccurredAt: time.Now(),
	}
}

// ToJSON encodes the event for the wire.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes a wire message.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
