package events

import "time"

const (
	SessionCreated   = "SESSION_CREATED"
	SessionDeleted   = "SESSION_DELETED"
	MessageExchanged = "MESSAGE_EXCHANGED"
	FallbackUsed     = "FALLBACK_USED"
)

// Event defines the contract for all domain events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

var _ Event = BaseEvent{}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewSessionCreated(sessionId, owner string) BaseEvent {
	return newEvent(SessionCreated, map[string]interface{}{
		"session_id": sessionId,
		"owner":      owner,
	})
}

func NewSessionDeleted(sessionId, owner string) BaseEvent {
	return newEvent(SessionDeleted, map[string]interface{}{
		"session_id": sessionId,
		"owner":      owner,
	})
}

// NewMessageExchanged records one user/bot round trip. Content is not
// included; the audit trail only needs sizes and the reply source.
func NewMessageExchanged(sessionId, owner, source string, userChars, replyChars int) BaseEvent {
	return newEvent(MessageExchanged, map[string]interface{}{
		"session_id":  sessionId,
		"owner":       owner,
		"source":      source,
		"user_chars":  userChars,
		"reply_chars": replyChars,
	})
}

func NewFallbackUsed(sessionId, owner string) BaseEvent {
	return newEvent(FallbackUsed, map[string]interface{}{
		"session_id": sessionId,
		"owner":      owner,
	})
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
