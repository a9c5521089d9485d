// Package storage provides the local seed ledger: a TTL'd set of source URLs
// already handed to the article store, so re-runs can classify repeat seeds
// as ignored without a round trip.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Ledger tracks seeded source URLs.
type Ledger interface {
	Close() error
	SeenSource(url string) (bool, error)
	MarkSource(url string) error
}

// Options controls retention characteristics for concrete ledger implementations.
type Options struct {
	SeedTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSeedTTL         = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewLedger creates the configured ledger backend.
func NewLedger(typ, path string, opts Options) (Ledger, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopLedger{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt ledger requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported ledger type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SeedTTL <= 0 {
		opts.SeedTTL = defaultSeedTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopLedger struct{}

func (noopLedger) Close() error                    { return nil }
func (noopLedger) SeenSource(string) (bool, error) { return false, nil }
func (noopLedger) MarkSource(string) error         { return nil }
