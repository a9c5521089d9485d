package events

import "time"

// Event represents one pipeline run event published downstream.
type Event struct {
	Type       string         `json:"type"`
	Source     string         `json:"source"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// NewEvent constructs an Event of the given type.
func NewEvent(source, typ string, data map[string]any) Event {
	return Event{
		Type:       typ,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}
