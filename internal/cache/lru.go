// Package cache provides a bounded least-recently-used cache for values
// that own resources, such as GPU pipelines. Values that fall out of the
// cache are handed to an eviction callback.
//
// LRU is not safe for concurrent use.
package cache

// node is an entry of the recency list. The head is the most recently
// used entry, the tail the least.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// LRU maps keys to values and evicts the least recently used entry once
// more than limit entries are stored.
type LRU[K comparable, V any] struct {
	limit   int
	entries map[K]*node[K, V]
	head    *node[K, V]
	tail    *node[K, V]
	onEvict func(K, V)
}

// New returns an empty cache holding at most limit entries. A limit of 0
// means unlimited. onEvict, if not nil, receives every value that leaves
// the cache other than through Remove.
func New[K comparable, V any](limit int, onEvict func(K, V)) *LRU[K, V] {
	return &LRU[K, V]{
		limit:   limit,
		entries: make(map[K]*node[K, V]),
		onEvict: onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Add stores value under key as the most recently used entry. A value
// previously stored under key is evicted. So is the oldest entry when
// the cache grows past its limit.
func (c *LRU[K, V]) Add(key K, value V) {
	if n, ok := c.entries[key]; ok {
		old := n.value
		n.value = value
		c.moveToFront(n)
		c.evicted(key, old)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
	for c.limit > 0 && len(c.entries) > c.limit {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.entries, oldest.key)
		c.evicted(oldest.key, oldest.value)
	}
}

// Remove deletes key and returns its value without calling the eviction
// callback.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	delete(c.entries, key)
	return n.value, true
}

// EvictFunc evicts every entry for which match returns true and returns
// how many were evicted.
func (c *LRU[K, V]) EvictFunc(match func(K, V) bool) int {
	evicted := 0
	for n := c.head; n != nil; {
		next := n.next
		if match(n.key, n.value) {
			c.unlink(n)
			delete(c.entries, n.key)
			c.evicted(n.key, n.value)
			evicted++
		}
		n = next
	}
	return evicted
}

// Purge evicts every entry.
func (c *LRU[K, V]) Purge() {
	c.EvictFunc(func(K, V) bool { return true })
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	return len(c.entries)
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.entries))
	for n := c.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

func (c *LRU[K, V]) evicted(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// unlink removes n from the recency list and clears its links.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
