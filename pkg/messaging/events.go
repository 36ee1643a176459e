package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventScanStarted   = "docprocessing.scan.started"
	EventScanCompleted = "docprocessing.scan.completed"
	EventScanFailed    = "docprocessing.scan.failed"
	EventScanExpired   = "docprocessing.scan.expired"
)

// Exchange names
const (
	ExchangeDocProcessingEvents = "docprocessing.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data any) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Scan events carry no MRZ text or personal fields. Consumers correlate
// repeated documents through the keyed Fingerprint.

// ScanStartedEvent is published when a scan session is opened
type ScanStartedEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
}

// ScanCompletedEvent is published when a frame produced an accepted record
type ScanCompletedEvent struct {
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id,omitempty"`
	DocumentType string `json:"document_type"`
	Format       string `json:"format"`
	Fingerprint  string `json:"fingerprint"`
	Frames       int    `json:"frames"`
	Repaired     bool   `json:"repaired"`
	DurationMs   int64  `json:"duration_ms"`
}

// ScanFailedEvent is published when a session stops on a non-retryable error
type ScanFailedEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Reason    string `json:"reason"`
	Frames    int    `json:"frames"`
}

// ScanExpiredEvent is published when a session exceeds its scanning budget
type ScanExpiredEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Frames    int    `json:"frames"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
