// Package imagecache provides a bounded in-memory image cache keyed by URL.
package imagecache

import (
	"container/list"
	"image"
	"sync"
)

const (
	DefaultMaxCount = 100
	DefaultMaxBytes = 50 * 1024 * 1024
)

// Cache is an LRU cache bounded by both entry count and total byte cost.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	maxCount int
	maxBytes int64
	bytes    int64
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type entry struct {
	url  string
	img  image.Image
	size int64
}

// New creates a cache. Non-positive limits fall back to the defaults.
func New(maxCount int, maxBytes int64) *Cache {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Cache{
		maxCount: maxCount,
		maxBytes: maxBytes,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached image for url and marks it as recently used.
func (c *Cache) Get(url string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).img, true
}

// Put stores img under url with the given byte cost, replacing any previous
// entry for url. Entries costing more than the byte ceiling are not stored.
func (c *Cache) Put(url string, img image.Image, size int64) {
	if size < 0 {
		size = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[url]; ok {
		c.removeElement(el)
	}

	if size > c.maxBytes {
		return
	}

	el := c.order.PushFront(&entry{url: url, img: img, size: size})
	c.entries[url] = el
	c.bytes += size

	for c.order.Len() > c.maxCount || c.bytes > c.maxBytes {
		c.removeElement(c.order.Back())
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Bytes returns the total cost of cached entries.
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Purge removes all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.bytes = 0
}

func (c *Cache) removeElement(el *list.Element) {
	e := c.order.Remove(el).(*entry)
	delete(c.entries, e.url)
	c.bytes -= e.size
}
