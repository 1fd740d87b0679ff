package cache

import (
	"container/list"
	"sync"
	"time"
)

// lruEntry links the cache key and the entry to the list element.
type lruEntry struct {
	key   Key
	entry Entry
}

// MemoryStore implements Store with a fixed entry bound and LRU eviction.
// The front of the list is the most recently used entry.
type MemoryStore struct {
	mu      sync.Mutex
	lru     *list.List
	items   map[Key]*list.Element
	maxSize int
	now     func() time.Time
	stats   Stats
}

// Option customises a MemoryStore.
type Option func(*MemoryStore)

// WithClock replaces time.Now, mainly for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates a store holding at most maxSize live entries.
func NewMemoryStore(maxSize int, opts ...Option) (*MemoryStore, error) {
	if maxSize <= 0 {
		return nil, ErrInvalidCapacity
	}
	s := &MemoryStore{
		lru:     list.New(),
		items:   make(map[Key]*list.Element),
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxSize returns the configured bound.
func (s *MemoryStore) MaxSize() int {
	return s.maxSize
}

func (s *MemoryStore) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.items[key]
	if !ok {
		s.recordMissLocked()
		return Entry{}, false
	}
	item := element.Value.(*lruEntry)
	if item.entry.Expired(s.now()) {
		s.removeElementLocked(element)
		s.stats.Expirations++
		CacheExpirations.Inc()
		s.recordMissLocked()
		return Entry{}, false
	}

	s.lru.MoveToFront(element)
	s.stats.Hits++
	CacheHits.Inc()
	return item.entry, true
}

func (s *MemoryStore) Peek(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.items[key]
	if !ok {
		return Entry{}, false
	}
	item := element.Value.(*lruEntry)
	if item.entry.Expired(s.now()) {
		return Entry{}, false
	}
	return item.entry, true
}

func (s *MemoryStore) Put(key Key, value []byte, ttl time.Duration, opts PutOptions) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		if element, ok := s.items[key]; ok {
			s.removeElementLocked(element)
		}
		return nil
	}

	now := s.now()
	entry := Entry{
		Value:       value,
		ContentType: opts.ContentType,
		StoredAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	if element, ok := s.items[key]; ok {
		element.Value.(*lruEntry).entry = entry
		s.lru.MoveToFront(element)
		s.stats.Inserts++
		return nil
	}

	if s.lru.Len() >= s.maxSize {
		s.purgeExpiredLocked(now)
	}
	for s.lru.Len() >= s.maxSize {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.removeElementLocked(oldest)
		s.stats.Evictions++
		CacheEvictions.Inc()
	}

	s.items[key] = s.lru.PushFront(&lruEntry{key: key, entry: entry})
	s.stats.Inserts++
	CacheEntries.Set(float64(s.lru.Len()))
	return nil
}

func (s *MemoryStore) Remove(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.items[key]
	if !ok {
		return false
	}
	s.removeElementLocked(element)
	s.stats.Removes++
	return true
}

func (s *MemoryStore) Contains(key Key) bool {
	_, ok := s.Peek(key)
	return ok
}

func (s *MemoryStore) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())
	keys := make([]Key, 0, s.lru.Len())
	for element := s.lru.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry).key)
	}
	return keys
}

func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())
	return s.lru.Len()
}

func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.purgeExpiredLocked(s.now())
	s.stats.Sweeps++
	return removed
}

func (s *MemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.lru.Len()
	s.lru.Init()
	s.items = make(map[Key]*list.Element)
	s.stats = Stats{}
	CacheEntries.Set(0)
	return removed
}

func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.stats
	now := s.now()
	for element := s.lru.Front(); element != nil; element = element.Next() {
		if !element.Value.(*lruEntry).entry.Expired(now) {
			snapshot.Entries++
		}
	}
	snapshot.MaxSize = s.maxSize
	return snapshot
}

func (s *MemoryStore) recordMissLocked() {
	s.stats.Misses++
	CacheMisses.Inc()
}

// purgeExpiredLocked walks the whole list; callers must hold s.mu.
func (s *MemoryStore) purgeExpiredLocked(now time.Time) int {
	removed := 0
	for element := s.lru.Back(); element != nil; {
		prev := element.Prev()
		if element.Value.(*lruEntry).entry.Expired(now) {
			s.removeElementLocked(element)
			removed++
		}
		element = prev
	}
	if removed > 0 {
		s.stats.Expirations += uint64(removed)
		CacheExpirations.Add(float64(removed))
	}
	return removed
}

func (s *MemoryStore) removeElementLocked(element *list.Element) {
	item := s.lru.Remove(element).(*lruEntry)
	delete(s.items, item.key)
	CacheEntries.Set(float64(s.lru.Len()))
}

var _ Store = (*MemoryStore)(nil)
