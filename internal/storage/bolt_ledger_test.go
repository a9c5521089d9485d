package storage

import (
	"testing"
	"time"
)

func TestBoltLedgerMarksAndExpiresSources(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		SeedTTL:         1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	ledgerRaw, err := openBolt(dir+"/seeds.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	ledger := ledgerRaw.(*boltLedger)
	defer ledger.Close()

	seen, err := ledger.SeenSource("https://blog.test/a/")
	if err != nil || seen {
		t.Fatalf("expected unseen source, seen=%v err=%v", seen, err)
	}

	if err := ledger.MarkSource("https://blog.test/a/"); err != nil {
		t.Fatalf("MarkSource: %v", err)
	}

	seen, err = ledger.SeenSource("https://blog.test/a/")
	if err != nil || !seen {
		t.Fatalf("expected source marked as seen, got seen=%v err=%v", seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	ledger.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = ledger.SeenSource("https://blog.test/a/")
	if err != nil {
		t.Fatalf("SeenSource after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestNewLedgerSupportsNoop(t *testing.T) {
	ledger, err := NewLedger("none", "", Options{})
	if err != nil {
		t.Fatalf("NewLedger none: %v", err)
	}
	if err := ledger.MarkSource("x"); err != nil {
		t.Fatalf("noop ledger MarkSource: %v", err)
	}
	seen, err := ledger.SeenSource("x")
	if err != nil || seen {
		t.Fatalf("noop ledger must never report seen, got %v err=%v", seen, err)
	}
}

func TestNewLedgerRejectsUnknownType(t *testing.T) {
	if _, err := NewLedger("redis", "", Options{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}
