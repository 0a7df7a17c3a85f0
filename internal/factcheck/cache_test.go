package factcheck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeChecker counts calls and optionally blocks until released, so tests
// can observe the pending window deterministically.
type fakeChecker struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	score   float64
	err     error
}

func (f *fakeChecker) Check(ctx context.Context, claim, evidence string) (float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.score, f.err
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// waitForStatus polls the cache until the entry reaches the wanted status.
func waitForStatus(t *testing.T, c *Cache, claim, evidence string, want Status) Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entry := c.Read(claim, evidence); entry.Status == want {
			return entry
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for status %v, last entry: %#v", want, c.Read(claim, evidence))
	return Entry{}
}

func TestCache_ReadUnknown(t *testing.T) {
	c := NewCache(&fakeChecker{})

	entry := c.Read("claim", "evidence")
	if entry.Status != StatusUnknown {
		t.Errorf("Expected unknown status for unseen pair, got %v", entry.Status)
	}
}

func TestCache_EnsureIsIdempotent(t *testing.T) {
	checker := &fakeChecker{score: 0.87, release: make(chan struct{})}
	c := NewCache(checker)
	ctx := context.Background()

	c.Ensure(ctx, "claim", "evidence")
	c.Ensure(ctx, "claim", "evidence")
	c.Ensure(ctx, "claim", "evidence")

	// The check is still in flight: status must be pending.
	if entry := c.Read("claim", "evidence"); entry.Status != StatusPending {
		t.Errorf("Expected pending while the check runs, got %v", entry.Status)
	}

	close(checker.release)
	entry := waitForStatus(t, c, "claim", "evidence", StatusVerified)
	if entry.Score != 0.87 {
		t.Errorf("Expected score 0.87, got %v", entry.Score)
	}

	// Re-ensuring a settled pair must not re-check either.
	c.Ensure(ctx, "claim", "evidence")
	time.Sleep(20 * time.Millisecond)
	if got := checker.callCount(); got != 1 {
		t.Errorf("Expected exactly 1 backend call, got %d", got)
	}
}

func TestCache_DistinctPairsCheckSeparately(t *testing.T) {
	checker := &fakeChecker{score: 0.5}
	c := NewCache(checker)
	ctx := context.Background()

	c.Ensure(ctx, "claim", "evidence one")
	c.Ensure(ctx, "claim", "evidence two")
	c.Ensure(ctx, "other claim", "evidence one")

	waitForStatus(t, c, "claim", "evidence one", StatusVerified)
	waitForStatus(t, c, "claim", "evidence two", StatusVerified)
	waitForStatus(t, c, "other claim", "evidence one", StatusVerified)

	if got := checker.callCount(); got != 3 {
		t.Errorf("Expected 3 backend calls, got %d", got)
	}
}

func TestCache_FailureStaysPending(t *testing.T) {
	checker := &fakeChecker{err: errors.New("backend down")}
	c := NewCache(checker)

	c.Ensure(context.Background(), "claim", "evidence")

	// Give the check goroutine time to fail; the entry must hold at
	// pending rather than flip to an error state.
	time.Sleep(50 * time.Millisecond)
	if entry := c.Read("claim", "evidence"); entry.Status != StatusPending {
		t.Errorf("Expected pending after backend failure, got %v", entry.Status)
	}
}

func TestKey(t *testing.T) {
	if got := Key("the claim", "the evidence"); got != "the claim~the evidence" {
		t.Errorf("Unexpected key: %q", got)
	}

	// Distinct pairs must produce distinct keys.
	if Key("a", "b") == Key("b", "a") {
		t.Error("Key must distinguish claim from evidence")
	}
}
