// Package store wraps a compressed trie in a concurrency-safe key-value store
// that notifies registered observers of every mutation.
package store

import (
	"log/slog"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/matteso1/radixkv/internal/trie"
)

// Store is a thread-safe key-value store backed by a compressed trie.
// Reads share a lock; writes and observer notification run under an
// exclusive lock, so observers see mutations in the order they were applied.
type Store struct {
	trie      *trie.Trie
	observers []Observer
	filter    *bloom.BloomFilter // nil when disabled
	bloomCap  uint
	bloomFP   float64
	stale     uint // Keys deleted since the filter was last built
	logger    *slog.Logger
	mu        sync.RWMutex
}

// Config configures store behavior.
type Config struct {
	// BloomCapacity is the expected number of distinct keys. Zero disables the
	// negative-lookup filter. Deleted keys stay in the filter until half of
	// BloomCapacity keys have been deleted, then the filter is rebuilt from the
	// live keys so the false positive rate does not drift upwards.
	BloomCapacity uint
	// BloomFalsePositiveRate is the target false positive rate of the filter.
	BloomFalsePositiveRate float64
	// Logger receives observer failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BloomCapacity:          0,
		BloomFalsePositiveRate: 0.01,
	}
}

// New creates an empty store with the default configuration.
func New() *Store {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an empty store.
func NewWithConfig(config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		trie:   trie.New(),
		logger: logger.With("component", "store"),
	}
	if config.BloomCapacity > 0 {
		s.bloomCap = config.BloomCapacity
		s.bloomFP = config.BloomFalsePositiveRate
		s.filter = bloom.NewWithEstimates(s.bloomCap, s.bloomFP)
	}
	return s
}

// forget accounts for a deleted key and rebuilds the filter once enough
// deleted keys have accumulated. Must be called with mu held for writing.
func (s *Store) forget() {
	if s.filter == nil {
		return
	}
	s.stale++
	if s.stale < max(s.bloomCap/2, 1) {
		return
	}

	filter := bloom.NewWithEstimates(max(s.bloomCap, uint(s.trie.Len())), s.bloomFP)
	s.trie.Walk(func(key, _ string) bool {
		filter.AddString(key)
		return true
	})
	s.filter = filter
	s.stale = 0
	s.logger.Debug("rebuilt bloom filter", "keys", s.trie.Len())
}

// Put inserts or updates a key-value pair and fires a PUT event.
// Returns true if an existing value was overwritten.
func (s *Store) Put(key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced, err := s.trie.Put(key, value)
	if err != nil {
		return false, err
	}
	if s.filter != nil {
		s.filter.AddString(key)
	}
	s.notify(EventPut, key)
	return replaced, nil
}

// Get retrieves a value by key. Concurrent Gets never block each other.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.filter != nil && !s.filter.TestString(key) {
		return "", false, trie.ValidateKey(key)
	}
	return s.trie.Get(key)
}

// Delete removes a key and fires a DELETE event if it existed.
func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.trie.Remove(key)
	if err != nil || !removed {
		return false, err
	}
	s.forget()
	s.notify(EventDelete, key)
	return true, nil
}

// GetNth returns the n-th key-value pair in lexicographic order.
func (s *Store) GetNth(n int) (trie.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Select(n)
}

// DeleteNth removes the n-th key-value pair in lexicographic order and fires
// a DELETE event for its key.
func (s *Store) DeleteNth(n int) (trie.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.trie.RemoveNth(n)
	if !ok {
		return trie.Entry{}, false
	}
	s.forget()
	s.notify(EventDelete, e.Key)
	return e, true
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Len()
}

// Entries returns all entries in lexicographic order.
func (s *Store) Entries() []trie.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]trie.Entry, 0, s.trie.Len())
	s.trie.Walk(func(key, value string) bool {
		entries = append(entries, trie.Entry{Key: key, Value: value})
		return true
	})
	return entries
}

// Attach registers an observer. Observers are notified in registration order.
func (s *Store) Attach(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Detach unregisters the first registration of o.
// Returns false if o was not attached.
func (s *Store) Detach(o Observer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return true
		}
	}
	return false
}

// notify delivers an event to every observer. Must be called with mu held
// for writing.
func (s *Store) notify(kind EventType, key string) {
	for _, o := range s.observers {
		s.deliver(o, kind, key)
	}
}

func (s *Store) deliver(o Observer, kind EventType, key string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("observer panicked", "op", kind.String(), "key", key, "panic", r)
		}
	}()
	o.OnEvent(kind, key)
}
