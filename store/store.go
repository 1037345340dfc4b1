// Package store persists ledger events as append-only streams with
// optimistic concurrency, backed by either memory or SQLite. A stream
// holds the full observable log of one ledger instance, so its state
// can be audited or rebuilt from the record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types written by the Recorder.
const (
	TypeTransfer = "Transfer"
	TypeApproval = "Approval"
)

var (
	// ErrConcurrencyConflict is returned by Append when the expected
	// version does not match the stream's current version.
	ErrConcurrencyConflict = errors.New("store: stream version conflict")
)

// Event is one persisted ledger event.
type Event struct {
	// ID is a unique event identifier.
	ID string

	// Stream identifies the ledger instance.
	Stream string

	// Version is the event's position in the stream, starting at 0.
	// Assigned by Append.
	Version int

	// Type is TypeTransfer or TypeApproval.
	Type string

	// Data is the JSON payload.
	Data json.RawMessage

	// Time is when the event was recorded.
	Time time.Time
}

// NewEvent creates an event with a fresh ID, marshaling data to JSON.
func NewEvent(stream, eventType string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:     uuid.New().String(),
		Stream: stream,
		Type:   eventType,
		Data:   payload,
		Time:   time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Store is an append-only event store.
type Store interface {
	// Append adds events to a stream. expectedVersion must equal the
	// stream's current version (-1 for a new stream) or
	// ErrConcurrencyConflict is returned. Returns the new version.
	Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error)

	// Read returns the stream's events from fromVersion onward, in order.
	Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error)

	// StreamVersion returns the stream's current version, -1 if the
	// stream does not exist.
	StreamVersion(ctx context.Context, stream string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// TransferPayload is the JSON payload of a TypeTransfer event.
// Addresses are 0x-prefixed hex; Value is a decimal string.
type TransferPayload struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// ApprovalPayload is the JSON payload of a TypeApproval event.
type ApprovalPayload struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   string `json:"value"`
}
