package envfile

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultInitialCapacity is the number of entries allocated by the first load.
const DefaultInitialCapacity = 10

// Entry is one key-value pair held by a Store.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Store is an append-only sequence of entries with first-wins lookup.
//
// The backing slice is allocated lazily by Init and doubles when full. All
// methods are safe for concurrent use; each one holds the lock for its own
// duration only.
type Store struct {
	mu       sync.Mutex
	entries  []Entry
	count    int
	capacity int

	// maxEntries caps the backing slice; 0 means unlimited.
	maxEntries int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxEntries caps the number of entries the store may hold. Growing past
// the cap fails with ErrAllocation.
func WithMaxEntries(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// NewStore creates an uninitialized store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init allocates the backing slice if it has not been allocated yet. It is a
// no-op on an initialized store.
func (s *Store) Init(initialCapacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries != nil {
		return nil
	}
	if initialCapacity <= 0 {
		return fmt.Errorf("%w: invalid initial capacity %d", ErrAllocation, initialCapacity)
	}
	if s.maxEntries > 0 && initialCapacity > s.maxEntries {
		initialCapacity = s.maxEntries
	}

	s.entries = make([]Entry, initialCapacity)
	s.count = 0
	s.capacity = initialCapacity
	return nil
}

// ensureCapacityLocked doubles the backing slice when it is full. The grown
// slice is fully built before it replaces the old one, so a failed grow
// leaves the store usable at its previous capacity.
func (s *Store) ensureCapacityLocked() error {
	if s.count < s.capacity {
		return nil
	}

	newCapacity := s.capacity * 2
	if newCapacity == 0 {
		newCapacity = DefaultInitialCapacity
	}
	if s.maxEntries > 0 && newCapacity > s.maxEntries {
		newCapacity = s.maxEntries
	}
	if newCapacity <= s.capacity {
		return fmt.Errorf("%w: store is full at %d entries", ErrAllocation, s.capacity)
	}

	grown := make([]Entry, newCapacity)
	copy(grown, s.entries[:s.count])
	s.entries = grown
	s.capacity = newCapacity
	return nil
}

// Append adds a copy of key and value to the end of the store. Existing
// entries with the same key are left in place. The capacity check, grow and
// write happen under a single lock so concurrent appends never race.
func (s *Store) Append(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCapacityLocked(); err != nil {
		return err
	}

	s.entries[s.count] = Entry{
		Key:   strings.Clone(key),
		Value: strings.Clone(value),
	}
	s.count++
	return nil
}

// Get returns the value of the earliest entry whose key equals key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < s.count; i++ {
		if s.entries[i].Key == key {
			return s.entries[i].Value, true
		}
	}
	return "", false
}

// Clear drops every entry and releases the backing slice, returning the
// store to its uninitialized state. It is safe to call on an empty store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	s.entries = nil
	s.count = 0
	s.capacity = 0
}

// Len returns the number of entries, duplicates included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Cap returns the size of the backing slice.
func (s *Store) Cap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// Initialized reports whether the backing slice has been allocated.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries != nil
}

// Snapshot returns a copy of all entries in insertion order, duplicates included.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, s.count)
	copy(out, s.entries[:s.count])
	return out
}

// Effective returns one entry per key, holding the value Get would return,
// ordered by first occurrence.
func (s *Store) Effective() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FirstOccurrences(s.entries[:s.count])
}

// FirstOccurrences returns a new slice holding the first entry for each key,
// in order. Later duplicates are dropped, matching Store.Get.
func FirstOccurrences(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Keys returns the distinct keys in order of first occurrence.
func (s *Store) Keys() []string {
	effective := s.Effective()
	keys := make([]string, len(effective))
	for i, e := range effective {
		keys[i] = e.Key
	}
	return keys
}

// Environ returns the effective entries formatted as KEY=VALUE, suitable for
// exec.Cmd.Env.
func (s *Store) Environ() []string {
	effective := s.Effective()
	env := make([]string, len(effective))
	for i, e := range effective {
		env[i] = e.Key + "=" + e.Value
	}
	return env
}

// NewStaging returns an empty store with the same limits as s, for building a
// replacement off to the side before calling Swap.
func (s *Store) NewStaging() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Store{maxEntries: s.maxEntries}
}

// Swap replaces the contents of s with the contents of next in one step and
// leaves next uninitialized. Readers of s see either the old or the new
// entries, never a partial load.
func (s *Store) Swap(next *Store) {
	if s == next {
		return
	}

	next.mu.Lock()
	entries, count, capacity := next.entries, next.count, next.capacity
	next.entries, next.count, next.capacity = nil, 0, 0
	next.mu.Unlock()

	s.mu.Lock()
	s.entries, s.count, s.capacity = entries, count, capacity
	s.mu.Unlock()
}
