package letters

import (
	"log"
	"sync"
	"time"

	"github.com/sturner103/letter-to-you/models"
	"github.com/sturner103/letter-to-you/store"
)

// ListCache holds per-user letter lists with stale-while-revalidate
// semantics: a stale entry is served immediately while a background
// refresh replaces it.
type ListCache struct {
	mu      sync.Mutex
	store   *store.Store
	ttl     time.Duration
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	letters    []*models.Letter
	fetchedAt  time.Time
	refreshing bool
}

func NewListCache(st *store.Store, ttl time.Duration) *ListCache {
	return &ListCache{
		store:   st,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the user's letters newest first. A cold cache blocks on the
// fetch; a warm-but-stale one returns the old list and refreshes behind
// the caller's back.
func (c *ListCache) Get(userID string) ([]*models.Letter, error) {
	c.mu.Lock()
	entry, ok := c.entries[userID]
	if ok {
		stale := time.Since(entry.fetchedAt) > c.ttl
		if stale && !entry.refreshing {
			entry.refreshing = true
			go c.refresh(userID)
		}
		letters := entry.letters
		c.mu.Unlock()
		return letters, nil
	}
	c.mu.Unlock()

	letters, err := c.store.ListLetters(userID, store.SortNewest)
	if err != nil {
		return nil, err
	}
	c.put(userID, letters)
	return letters, nil
}

// Invalidate drops a user's entry; the next Get fetches fresh. Call after
// any write to that user's letters.
func (c *ListCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

func (c *ListCache) refresh(userID string) {
	letters, err := c.store.ListLetters(userID, store.SortNewest)
	if err != nil {
		log.Printf("Background letter list refresh for user %s failed: %v", userID, err)
		c.mu.Lock()
		if entry, ok := c.entries[userID]; ok {
			entry.refreshing = false
		}
		c.mu.Unlock()
		return
	}
	c.put(userID, letters)
}

func (c *ListCache) put(userID string, letters []*models.Letter) {
	c.mu.Lock()
	c.entries[userID] = &cacheEntry{letters: letters, fetchedAt: time.Now()}
	c.mu.Unlock()
}
