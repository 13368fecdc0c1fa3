// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a namespaced, TTL-bounded in-memory store used to
// memoize upstream responses. Implements: prd004-cache (R1-R4);
//
//	docs/ARCHITECTURE § Response Cache.
//
// The store never returns errors: a fault degrades to a cache miss, since
// staleness is preferable to failure for a discovery feature. Expired
// entries are removed lazily on read and physically by a periodic sweep;
// deleting an already-deleted key is a no-op, so the two paths coexist.
package cache

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTTL bounds entries stored without an explicit TTL.
const DefaultTTL = time.Hour

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
}

// expired reports whether the entry is logically absent at time now. An
// entry past its TTL is absent even if not yet physically evicted.
func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Store is a namespaced key/value cache. Concurrent access is safe;
// overlapping Set calls to the same key resolve last-write-wins because
// entries are always fully overwritten, never patched in place.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	defaultTTL time.Duration
	logger     *log.Logger

	// now is the clock source; tests substitute it to advance virtual time.
	now func() time.Time

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// New creates an empty Store. A non-positive defaultTTL falls back to
// DefaultTTL. The logger may be nil.
//
// Namespaces must not contain ':': entries are stored under the composed
// "namespace:key", so a colon in the namespace would let one namespace
// alias another's keys and widen Clear's prefix match.
func New(defaultTTL time.Duration, logger *log.Logger) *Store {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
		sweepStop:  make(chan struct{}),
	}
}

func cacheKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get returns the value stored under (namespace, key), or ok=false when no
// entry exists or the entry has expired. Expired entries are deleted on read.
func (s *Store) Get(namespace, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cacheKey(namespace, key)
	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	if e.expired(s.now()) {
		delete(s.entries, k)
		return nil, false
	}
	return e.value, true
}

// Set stores value under (namespace, key), overwriting any existing entry
// and resetting its clock. A non-positive ttl uses the store default.
func (s *Store) Set(namespace, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cacheKey(namespace, key)] = entry{
		value:     value,
		createdAt: s.now(),
		ttl:       ttl,
	}
}

// Delete removes the entry for (namespace, key). Removing an absent entry
// is a no-op.
func (s *Store) Delete(namespace, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, cacheKey(namespace, key))
}

// Clear removes all entries under namespace, or every entry when namespace
// is empty.
func (s *Store) Clear(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if namespace == "" {
		s.entries = make(map[string]entry)
		return
	}
	prefix := namespace + ":"
	for k := range s.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.entries, k)
		}
	}
}

// Len returns the number of physically stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep scans all entries and physically removes any past TTL. It returns
// the number of entries evicted.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	evicted := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			evicted++
		}
	}
	return evicted
}

// StartSweeper launches the background sweep loop, running every interval
// until Stop is called. A non-positive interval defaults to one hour.
func (s *Store) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("cache sweep", "evicted", n)
				}
			case <-s.sweepStop:
				return
			}
		}
	}()
}

// Stop terminates the background sweep loop. Safe to call more than once
// and safe even if StartSweeper was never called.
func (s *Store) Stop() {
	s.sweepOnce.Do(func() { close(s.sweepStop) })
}
