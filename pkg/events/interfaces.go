package events

import "context"

// Publisher sends events to a downstream sink (log, HTTP webhook, etc).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
