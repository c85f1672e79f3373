package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/greenblatt/pkg/logger"
)

// Entry is one stored value
type Entry struct {
	Key      string
	Value    []byte
	StoredAt time.Time
	TTL      time.Duration
}

// Expired reports whether the entry is no longer visible at now
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.StoredAt.Add(e.TTL))
}

// MemoryStore is an in-process Store
// ⭐ SSOT: in-memory entries are guarded by mu only
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
	logger  *logger.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
		logger:  log.WithComponent("memory_store"),
	}
}

// WithClock replaces the time source
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Get returns a copy of the live value for key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists || entry.Expired(s.now()) {
		return nil, false, nil
	}

	out := make([]byte, len(entry.Value))
	copy(out, entry.Value)
	return out, true, nil
}

// Set stores a copy of value, replacing any previous entry
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Key:      key,
		Value:    stored,
		StoredAt: s.now(),
		TTL:      ttl,
	}
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len returns the number of entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// CleanExpired drops expired entries and returns how many were removed
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			count++
		}
	}

	if count > 0 {
		s.logger.WithField("count", count).Info("Cleaned expired cache entries")
	}
	return count
}
