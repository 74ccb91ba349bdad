// Package repository provides the in-memory stores backing the matching
// engine: a chained hash table for keyed lookups and an index-augmented
// binary heap for per-category ranking.
package repository

import "hash/fnv"

// Table sizing constants.
const (
	defaultCapacity = 16
	loadFactor      = 0.75
)

// entry is a single chained key/value node.
type entry[V any] struct {
	key   string
	value V
	next  *entry[V]
}

// KeyedTable is a string-keyed associative store with separate chaining
// and automatic growth. The zero value is not usable; construct with
// NewKeyedTable.
type KeyedTable[V any] struct {
	buckets  []*entry[V]
	size     int
	capacity int
}

// NewKeyedTable creates an empty table with the default capacity.
func NewKeyedTable[V any]() *KeyedTable[V] {
	return &KeyedTable[V]{
		buckets:  make([]*entry[V], defaultCapacity),
		capacity: defaultCapacity,
	}
}

// hash folds the key content through FNV-1a, mixes the high bits into the
// low ones, and reduces modulo the current capacity.
func (t *KeyedTable[V]) hash(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	v := h.Sum32()
	v ^= v >> 16
	return int(v % uint32(t.capacity))
}

// Put stores value under key, updating in place when the key exists.
// Empty keys are rejected as a no-op. Growth triggers before insertion.
func (t *KeyedTable[V]) Put(key string, value V) {
	if key == "" {
		return
	}

	if float64(t.size) >= float64(t.capacity)*loadFactor {
		t.grow()
	}

	idx := t.hash(key)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.value = value
			return
		}
	}

	t.buckets[idx] = &entry[V]{key: key, value: value, next: t.buckets[idx]}
	t.size++
}

// Get returns the value stored under key; ok is false when absent.
func (t *KeyedTable[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	for e := t.buckets[t.hash(key)]; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	return zero, false
}

// ContainsKey reports whether key is present.
func (t *KeyedTable[V]) ContainsKey(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Remove deletes key and returns the removed value; ok is false when the
// key was absent.
func (t *KeyedTable[V]) Remove(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	idx := t.hash(key)
	var prev *entry[V]
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				t.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			t.size--
			return e.value, true
		}
		prev = e
	}
	return zero, false
}

// Size returns the number of stored entries.
func (t *KeyedTable[V]) Size() int { return t.size }

// Clear removes every entry, keeping the current capacity.
func (t *KeyedTable[V]) Clear() {
	t.buckets = make([]*entry[V], t.capacity)
	t.size = 0
}

// Values returns all stored values. Ordering is not meaningful.
func (t *KeyedTable[V]) Values() []V {
	out := make([]V, 0, t.size)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			out = append(out, e.value)
		}
	}
	return out
}

// grow doubles the capacity and rehashes every entry in bucket-scan order.
func (t *KeyedTable[V]) grow() {
	old := t.buckets
	t.capacity *= 2
	t.buckets = make([]*entry[V], t.capacity)
	t.size = 0

	for _, head := range old {
		for e := head; e != nil; e = e.next {
			t.Put(e.key, e.value)
		}
	}
}
