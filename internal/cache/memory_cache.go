package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"
)

// MemoryConfig configures a MemoryCache.
type MemoryConfig struct {
	// MaxEntries bounds the number of entries. Zero means unbounded.
	MaxEntries int

	// CleanupInterval is how often expired entries are swept. Zero disables the janitor
	// and leaves expiry to lookups.
	CleanupInterval time.Duration
}

type memoryEntry struct {
	// enclave is nil for an empty value.
	enclave   *memguard.Enclave
	ttl       time.Duration
	expiresAt time.Time
}

// MemoryCache is a bounded TTL map whose values are sealed in memguard enclaves, so
// plaintext secrets are only decrypted in memory while a Read copies them out.
//
// Every Read hit pushes the entry's expiry forward by its original TTL. When the cache
// is full the entry closest to expiry is evicted. Close stops the janitor.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	maxEntries int
	now        func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache returns a MemoryCache and starts its janitor when configured.
func NewMemoryCache(cfg MemoryConfig) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.janitor(cfg.CleanupInterval)
	} else {
		close(c.done)
	}

	return c
}

// Read returns the value for key and refreshes its expiry.
func (c *MemoryCache) Read(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return "", false, nil
	}
	e.expiresAt = c.now().Add(e.ttl)

	if e.enclave == nil {
		return "", true, nil
	}
	buf, err := e.enclave.Open()
	if err != nil {
		return "", false, fmt.Errorf("failed to open cached value: %w", err)
	}
	defer buf.Destroy()

	return string(buf.Bytes()), true, nil
}

// Write stores value under key for ttl. A non-positive ttl removes the key instead.
func (c *MemoryCache) Write(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		delete(c.entries, key)
		return nil
	}

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict()
	}

	var enclave *memguard.Enclave
	if value != "" {
		// NewEnclave wipes its argument, so hand it a private copy.
		enclave = memguard.NewEnclave([]byte(value))
	}

	c.entries[key] = &memoryEntry{
		enclave:   enclave,
		ttl:       ttl,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Contains reports whether key holds an unexpired value without refreshing it.
func (c *MemoryCache) Contains(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live(key)
	return ok, nil
}

// Purge removes every entry.
func (c *MemoryCache) Purge(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the janitor and drops every entry. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done

		c.mu.Lock()
		clear(c.entries)
		c.mu.Unlock()
	})
	return nil
}

// live returns the entry for key, dropping it when expired. c.mu must be held.
func (c *MemoryCache) live(key string) (*memoryEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e, true
}

// evict makes room for one entry. c.mu must be held.
func (c *MemoryCache) evict() {
	if c.sweep() > 0 {
		return
	}

	var (
		victim string
		oldest time.Time
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

// sweep removes expired entries and returns how many were removed. c.mu must be held.
func (c *MemoryCache) sweep() int {
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) janitor(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.sweep()
			c.mu.Unlock()
		}
	}
}
