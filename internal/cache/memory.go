package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/tendant/simple-ocr/internal/extract"
)

// DefaultCapacity bounds the in-memory cache when no capacity is given.
const DefaultCapacity = 100

// Memory is an in-process LRU cache with an optional TTL. Unlike a plain
// process-lifetime map it cannot grow without bound: the least recently
// used entry is evicted once capacity is reached, and stale entries are
// dropped on lookup when a TTL is set.
type Memory struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[Fingerprint]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

// NewMemory creates a memory cache holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity; a zero ttl disables
// time-based expiry.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[Fingerprint]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Lookup returns the cached result for fp and marks it recently used.
func (m *Memory) Lookup(fp Fingerprint) (extract.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[fp]
	if !ok {
		return extract.Result{}, false
	}

	entry := elem.Value.(*Entry)
	if m.ttl > 0 && m.now().Sub(entry.CreatedAt) > m.ttl {
		m.order.Remove(elem)
		delete(m.entries, fp)
		return extract.Result{}, false
	}

	m.order.MoveToFront(elem)
	return entry.Result, true
}

// Store inserts or overwrites the entry for fp, evicting the least recently
// used entry if the cache is full.
func (m *Memory) Store(fp Fingerprint, result extract.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[fp]; ok {
		entry := elem.Value.(*Entry)
		entry.Result = result
		entry.CreatedAt = m.now()
		m.order.MoveToFront(elem)
		return
	}

	if m.order.Len() >= m.capacity {
		oldest := m.order.Back()
		if oldest != nil {
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*Entry).Fingerprint)
		}
	}

	m.entries[fp] = m.order.PushFront(&Entry{
		Fingerprint: fp,
		Result:      result,
		CreatedAt:   m.now(),
	})
}

// Len reports the number of entries currently held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
