package repository

import "reflect"

// Element is the contract heap elements must satisfy: a strict total order
// (Less must break primary-key ties deterministically, e.g. by identity
// key) and a stable identity key for the index map. Elements returning an
// empty key are still accepted but lose the O(log n) removal fast path.
type Element[E any] interface {
	Less(other E) bool
	Key() string
}

// IndexedHeap is an array-backed binary heap augmented with a key-to-
// position index so any tracked element can be removed in O(log n).
//
// Invariant: for every tracked element e, indexMap[e.Key()] equals e's
// current array position at all times outside an in-progress mutation.
type IndexedHeap[E Element[E]] struct {
	heap     []E
	indexMap *KeyedTable[int]
}

// NewIndexedHeap creates an empty heap.
func NewIndexedHeap[E Element[E]]() *IndexedHeap[E] {
	return &IndexedHeap[E]{
		indexMap: NewKeyedTable[int](),
	}
}

// IsEmpty reports whether the heap holds no elements.
func (h *IndexedHeap[E]) IsEmpty() bool { return len(h.heap) == 0 }

// Len returns the number of stored elements.
func (h *IndexedHeap[E]) Len() int { return len(h.heap) }

// Add inserts e and sifts it up. Nil elements are rejected.
func (h *IndexedHeap[E]) Add(e E) bool {
	if isNil(e) {
		return false
	}

	h.heap = append(h.heap, e)
	i := len(h.heap) - 1
	if key := e.Key(); key != "" {
		h.indexMap.Put(key, i)
	}

	h.siftUp(i)
	return true
}

// Poll removes and returns the highest-priority element; ok is false when
// the heap is empty.
func (h *IndexedHeap[E]) Poll() (E, bool) {
	var zero E
	if len(h.heap) == 0 {
		return zero, false
	}

	root := h.heap[0]
	if key := root.Key(); key != "" {
		h.indexMap.Remove(key)
	}

	last := len(h.heap) - 1
	e := h.heap[last]
	h.heap[last] = zero
	h.heap = h.heap[:last]

	if len(h.heap) > 0 {
		h.heap[0] = e
		if key := e.Key(); key != "" {
			h.indexMap.Put(key, 0)
		}
		h.siftDown(0)
	}

	return root, true
}

// Remove deletes e from an arbitrary position, locating it through the
// index map when e carries a key and by linear scan otherwise. The vacated
// slot is sifted in both directions since the replacement element can move
// either way.
func (h *IndexedHeap[E]) Remove(e E) bool {
	if isNil(e) || len(h.heap) == 0 {
		return false
	}

	if key := e.Key(); key != "" {
		i, ok := h.indexMap.Get(key)
		if !ok {
			return false
		}
		h.removeAt(i, key)
		return true
	}

	for i := range h.heap {
		if equal(h.heap[i], e) {
			h.removeAt(i, h.heap[i].Key())
			return true
		}
	}
	return false
}

// removeAt swaps index i with the last slot, shrinks, and restores the
// heap property from i.
func (h *IndexedHeap[E]) removeAt(i int, key string) {
	var zero E
	if key != "" {
		h.indexMap.Remove(key)
	}

	last := len(h.heap) - 1
	e := h.heap[last]
	h.heap[last] = zero
	h.heap = h.heap[:last]

	if i != last {
		h.heap[i] = e
		if lastKey := e.Key(); lastKey != "" {
			h.indexMap.Put(lastKey, i)
		}
		h.siftDown(i)
		h.siftUp(i)
	}
}

func (h *IndexedHeap[E]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.heap[i].Less(h.heap[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *IndexedHeap[E]) siftDown(i int) {
	n := len(h.heap)
	for {
		left := 2*i + 1
		right := 2*i + 2
		best := i

		if left < n && h.heap[left].Less(h.heap[best]) {
			best = left
		}
		if right < n && h.heap[right].Less(h.heap[best]) {
			best = right
		}
		if best == i {
			return
		}
		h.swap(i, best)
		i = best
	}
}

// swap exchanges two slots and synchronously updates the index map for
// both, keeping the position invariant intact.
func (h *IndexedHeap[E]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	if key := h.heap[i].Key(); key != "" {
		h.indexMap.Put(key, i)
	}
	if key := h.heap[j].Key(); key != "" {
		h.indexMap.Put(key, j)
	}
}

// isNil reports whether a (possibly pointer-typed) element is nil.
func isNil[E any](e E) bool {
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

// equal compares elements for the linear-scan removal path: two elements
// are the same when neither orders before the other.
func equal[E Element[E]](a, b E) bool {
	return !a.Less(b) && !b.Less(a)
}
