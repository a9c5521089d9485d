package events

import "context"

// logPublisher writes events to the structured log. It is the default sink
// when no events file is configured.
type logPublisher struct {
	id  string
	log Logger
}

func newLogPublisher(cfg PublisherConfig, log Logger) (Publisher, error) {
	id := cfg.ID
	if id == "" {
		id = "log"
	}
	return &logPublisher{id: id, log: ensureLogger(log)}, nil
}

// NewLogPublisher exposes the log sink for callers wiring defaults directly.
func NewLogPublisher(id string, log Logger) Publisher {
	pub, _ := newLogPublisher(PublisherConfig{ID: id}, log)
	return pub
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return TypeLog }

func (l *logPublisher) Publish(_ context.Context, evt Event) error {
	l.log.InfoObj("pipeline event", evt.Type, evt)
	return nil
}
