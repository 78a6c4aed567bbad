package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

const layerMemory = "memory"

// Node represents a doubly linked list node
type Node struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
	Prev      *Node
	Next      *Node
}

// LRUCache is a thread-safe LRU cache with per-entry expiry. Values are
// stored JSON-encoded so callers never share memory with the cache.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*Node
	head     *Node // most recently used
	tail     *Node // least recently used
	now      func() time.Time
}

// NewLRUCache creates an LRU cache with given capacity
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1000 // default
	}

	c := &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*Node, capacity),
		now:      time.Now,
	}

	// Initialize dummy head and tail
	c.head = &Node{}
	c.tail = &Node{}
	c.head.Next = c.tail
	c.tail.Prev = c.head

	return c
}

// Get decodes the live value for key into v and marks it as recently used.
func (c *LRUCache) Get(_ context.Context, key string, v interface{}) error {
	c.mu.Lock()
	node, exists := c.cache[key]
	if exists && !c.now().Before(node.ExpiresAt) {
		c.removeNode(node)
		delete(c.cache, key)
		exists = false
	}
	if !exists {
		c.mu.Unlock()
		metrics.CacheMisses.WithLabelValues(layerMemory).Inc()
		return ErrCacheMiss
	}
	c.moveToFront(node)
	data := node.Value
	c.mu.Unlock()

	if err := json.Unmarshal(data, v); err != nil {
		metrics.CacheErrors.WithLabelValues(layerMemory, "decode").Inc()
		return errors.Wrapf(err, "decode cached %s", key)
	}
	metrics.CacheHits.WithLabelValues(layerMemory).Inc()
	return nil
}

// Set adds or updates a key with the given lifetime. A non-positive ttl
// stores nothing.
func (c *LRUCache) Set(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	// If key exists, update value and move to front
	if node, exists := c.cache[key]; exists {
		node.Value = data
		node.ExpiresAt = expiresAt
		c.moveToFront(node)
		return nil
	}
	if len(c.cache) >= c.capacity {
		c.evictTail()
	}
	newNode := &Node{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
	}
	c.addToFront(newNode)
	c.cache[key] = newNode
	metrics.CacheSize.WithLabelValues(layerMemory).Set(float64(len(c.cache)))
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, exists := c.cache[key]; exists {
		c.removeNode(node)
		delete(c.cache, key)
	}
	return nil
}

// moveToFront moves a node to the head (most recent)
func (c *LRUCache) moveToFront(node *Node) {
	c.removeNode(node)
	c.addToFront(node)
}

// removeNode removes a node from the list (doesn't delete from map)
func (c *LRUCache) removeNode(node *Node) {
	node.Prev.Next = node.Next
	node.Next.Prev = node.Prev
}

// addToFront adds a node right after the dummy head
func (c *LRUCache) addToFront(node *Node) {
	headNext := c.head.Next

	node.Next = headNext
	node.Prev = c.head

	c.head.Next = node
	headNext.Prev = node
}

// evictTail removes the least recently used item
func (c *LRUCache) evictTail() {
	lru := c.tail.Prev
	if lru == c.head {
		return
	}
	c.removeNode(lru)
	delete(c.cache, lru.Key)
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
