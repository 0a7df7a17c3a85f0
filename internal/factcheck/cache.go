// Package factcheck memoizes one-shot claim verification calls for the
// lifetime of a conversation session.
package factcheck

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// Status is the latest-known state of a verification
type Status int

const (
	StatusUnknown  Status = iota // never requested
	StatusPending                // request issued, no verdict yet (or backend failed)
	StatusVerified               // verdict received
)

// Entry is the cached verification state for one (claim, evidence) key.
type Entry struct {
	Status Status
	Score  float64 // support score in [0,1], meaningful when StatusVerified
}

// Checker verifies how well a claim is supported by a piece of evidence.
type Checker interface {
	Check(ctx context.Context, claim, evidence string) (float64, error)
}

// Cache gates verification calls so each distinct (claim, evidence) pair
// hits the backend at most once per session. Entries are never evicted;
// the population is bounded by the distinct citations actually shown.
type Cache struct {
	store   *gocache.Cache
	checker Checker
}

// NewCache creates a session-lifetime cache backed by the given checker.
func NewCache(checker Checker) *Cache {
	return &Cache{
		store:   gocache.New(gocache.NoExpiration, 0),
		checker: checker,
	}
}

// Key builds the cache key for a claim/evidence pair.
func Key(claim, evidence string) string {
	return claim + "~" + evidence
}

// Ensure triggers verification for the pair unless it is already pending
// or resolved. The check-and-set is synchronous and race-free (go-cache
// Add is atomic under its mutex), so two Ensure calls racing before the
// first verdict still collapse to a single backend request. The verdict
// is written back asynchronously; a backend failure leaves the entry
// Pending, which renders as a perpetual "checking" indicator rather than
// an error.
func (c *Cache) Ensure(ctx context.Context, claim, evidence string) {
	key := Key(claim, evidence)
	if err := c.store.Add(key, Entry{Status: StatusPending}, gocache.NoExpiration); err != nil {
		return
	}

	go func() {
		score, err := c.checker.Check(ctx, claim, evidence)
		if err != nil {
			return
		}
		c.store.Set(key, Entry{Status: StatusVerified, Score: score}, gocache.NoExpiration)
	}()
}

// Read returns the latest-known state for the pair. Reads are safe from
// any goroutine and never block on an in-flight verification.
func (c *Cache) Read(claim, evidence string) Entry {
	if v, found := c.store.Get(Key(claim, evidence)); found {
		return v.(Entry)
	}
	return Entry{Status: StatusUnknown}
}
