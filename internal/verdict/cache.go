// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package verdict

import (
	"net/netip"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded decision.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	Process     string     `json:"process"`
	Destination netip.Addr `json:"destination"`
	Verdict     Verdict    `json:"verdict"`
	DecidedAt   time.Time  `json:"decided_at"`
}

// Cache is an append-only list of decisions.
//
// Lookup returns the first entry for a key, so a second Insert for the same
// (process, destination) is shadowed and never consulted. The packet path is
// single threaded; the lock exists for readers such as the status API.
type Cache struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

// Lookup scans for the first entry matching process and destination.
func (c *Cache) Lookup(process string, dst netip.Addr) (Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		if e.Process == process && e.Destination == dst {
			return e.Verdict, true
		}
	}
	return Drop, false
}

// Insert appends a decision unconditionally and returns the stored entry.
func (c *Cache) Insert(process string, dst netip.Addr, v Verdict) Entry {
	e := Entry{
		ID:          uuid.New(),
		Process:     process,
		Destination: dst,
		Verdict:     v,
		DecidedAt:   c.now(),
	}

	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
	return e
}

// Entries returns a copy of all entries in insertion order, shadows included.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
