package kafka

import (
	"testing"
	"time"
)

func TestMessageBuilder_SetsHeaders(t *testing.T) {
	msg := NewMessage().
		WithKey("team-1").
		WithValue(map[string]string{"hello": "world"}).
		WithEventType("attack.settled").
		WithCorrelationID("surface-1").
		WithSchemaVersion("1").
		WithSource("raids").
		Build()

	if msg.Key != "team-1" {
		t.Errorf("expected key team-1, got %q", msg.Key)
	}
	if msg.Headers[HeaderEventType] != "attack.settled" {
		t.Errorf("expected event type header, got %q", msg.Headers[HeaderEventType])
	}
	if msg.Headers[HeaderCorrelationID] != "surface-1" {
		t.Errorf("expected correlation header, got %q", msg.Headers[HeaderCorrelationID])
	}
	if msg.Headers[HeaderEventID] == "" {
		t.Error("expected a generated event ID")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected a timestamp header")
	}
	if _, err := time.Parse(time.RFC3339, msg.Headers[HeaderTimestamp]); err != nil {
		t.Errorf("timestamp header is not RFC3339: %v", err)
	}
}

func TestMessageBuilder_GeneratesUniqueEventIDs(t *testing.T) {
	first := NewMessage().WithKey("k").WithValue("v").Build()
	second := NewMessage().WithKey("k").WithValue("v").Build()

	if first.GetEventID() == second.GetEventID() {
		t.Error("expected distinct event IDs")
	}
}

func TestMessageBuilder_KeepsProvidedEventID(t *testing.T) {
	msg := NewMessage().WithEventID("fixed-id").Build()
	if msg.GetEventID() != "fixed-id" {
		t.Errorf("expected fixed-id, got %q", msg.GetEventID())
	}
}

func TestMessage_DecodeValue(t *testing.T) {
	type payload struct {
		TeamID string `json:"team_id"`
		Damage int64  `json:"damage"`
	}

	msg := NewMessage().
		WithKey("team-1").
		WithValue(payload{TeamID: "team-1", Damage: 450_000}).
		Build()

	var decoded payload
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.TeamID != "team-1" || decoded.Damage != 450_000 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue("v").Build()

	if msg.GetRetryCount() != 0 {
		t.Errorf("expected 0 retries, got %d", msg.GetRetryCount())
	}

	for i := 1; i <= 12; i++ {
		msg.IncrementRetryCount()
		if msg.GetRetryCount() != i {
			t.Fatalf("after %d increments got %d", i, msg.GetRetryCount())
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		message string
		want    ErrorType
	}{
		{"connection refused", ErrorTypeTransient},
		{"request timeout", ErrorTypeTransient},
		{"i/o timeout while writing", ErrorTypeTransient},
		{"schema mismatch on field damage", ErrorTypePermanent},
		{"something else entirely", ErrorTypePermanent},
	}

	for _, tt := range tests {
		if got := ClassifyError(errorString(tt.message)); got != tt.want {
			t.Errorf("%q: expected type %d, got %d", tt.message, tt.want, got)
		}
	}
}

func TestClassifyError_RespectsKafkaErrorType(t *testing.T) {
	err := NewTransientError("broker flapping", nil)
	if got := ClassifyError(err); got != ErrorTypeTransient {
		t.Errorf("expected transient, got %d", got)
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
