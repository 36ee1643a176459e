package messaging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := ScanCompletedEvent{
		SessionID:    "s-1",
		DocumentType: "passport",
		Format:       "TD3",
		Fingerprint:  "abc",
		Frames:       3,
	}

	event, err := NewEvent(EventScanCompleted, "scanner-service", "corr-1", payload)
	require.NoError(t, err)

	assert.Equal(t, EventScanCompleted, event.Type)
	assert.Equal(t, "scanner-service", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())
	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded ScanCompletedEvent
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent(EventScanFailed, "scanner-service", "", make(chan int))
	assert.Error(t, err)
}

func TestGenerateEventID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateEventID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))

	ctx = WithCorrelationID(ctx, "req-42")
	assert.Equal(t, "req-42", CorrelationID(ctx))
}
