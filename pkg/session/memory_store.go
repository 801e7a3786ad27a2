package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage implements Storage in process memory.
// Values are copied on the way in and out so callers cannot alias stored data.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryOption configures a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithMemoryTTL expires entries ttl after their last Set. Zero keeps them forever.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryStorage) {
		m.ttl = ttl
	}
}

// WithMemoryClock overrides the time source used for expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStorage creates an in-memory storage. A positive cleanupInterval
// starts a janitor goroutine removing expired entries; stop it with Close.
func NewMemoryStorage(cleanupInterval time.Duration, opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if cleanupInterval > 0 {
		m.ticker = time.NewTicker(cleanupInterval)
		go m.cleanupLoop()
	}

	return m
}

// Get returns a copy of the data stored for sid.
func (m *MemoryStorage) Get(ctx context.Context, sid string) (Data, error) {
	m.mu.RLock()
	entry, ok := m.entries[sid]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if entry.expired(m.now()) {
		// a concurrent Set may have replaced the entry since the read
		m.mu.Lock()
		entry, ok = m.entries[sid]
		if ok && entry.expired(m.now()) {
			delete(m.entries, sid)
			ok = false
		}
		m.mu.Unlock()
		if !ok {
			return nil, nil
		}
	}

	data := entry.data.Clone()
	if data == nil {
		data = Data{}
	}
	return data, nil
}

// Set stores a copy of data for sid.
func (m *MemoryStorage) Set(ctx context.Context, sid string, data Data) error {
	entry := memoryEntry{data: data.Clone()}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[sid] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes sid.
func (m *MemoryStorage) Delete(ctx context.Context, sid string) error {
	m.mu.Lock()
	delete(m.entries, sid)
	m.mu.Unlock()
	return nil
}

// DeleteExpired removes all expired entries
func (m *MemoryStorage) DeleteExpired(ctx context.Context) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for sid, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, sid)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the cleanup goroutine
func (m *MemoryStorage) Close() error {
	m.once.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStorage) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}
