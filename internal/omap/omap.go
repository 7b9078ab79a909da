// Package omap provides an insertion-ordered map that tolerates mutation
// while iterators are live.
//
// The map is the backing store for observer registries: callbacks invoked
// during a traversal may register or unregister observers, so iterators must
// survive concurrent insertion and removal without invalidation. Removed
// entries are skipped by in-flight iterators; whether insertions become
// visible depends on the iterator flavor (see [Map.Ascending] and
// [Map.AscendingWithAdditions]).
//
// All operations must run on a single goroutine. The map does no locking;
// callers serialize access through their delivery loop.
package omap

// Node is a single entry in the map, linked in insertion order.
type Node[K comparable, V any] struct {
	Key   K
	Value V

	next *Node[K, V]
	prev *Node[K, V]
}

// remover receives a callback when an entry is removed so live iterators
// can step over it.
type remover[K comparable, V any] interface {
	supportRemove(n *Node[K, V])
}

// Map is an insertion-ordered mapping with O(1) lookup and endpoint access.
// The zero value is not usable; call New.
type Map[K comparable, V any] struct {
	first *Node[K, V]
	last  *Node[K, V]
	index map[K]*Node[K, V]
	iters map[remover[K, V]]struct{}
}

// New creates an empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		index: make(map[K]*Node[K, V]),
		iters: make(map[remover[K, V]]struct{}),
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.index)
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.index[key]
	return ok
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if n, ok := m.index[key]; ok {
		return n.Value, true
	}
	var zero V
	return zero, false
}

// Before returns the entry inserted immediately before key, or nil when key
// is absent or is the eldest entry.
func (m *Map[K, V]) Before(key K) *Node[K, V] {
	n, ok := m.index[key]
	if !ok {
		return nil
	}
	return n.prev
}

// Eldest returns the first entry in insertion order, or nil when empty.
func (m *Map[K, V]) Eldest() *Node[K, V] {
	return m.first
}

// Newest returns the last entry in insertion order, or nil when empty.
func (m *Map[K, V]) Newest() *Node[K, V] {
	return m.last
}

// PutIfAbsent inserts value under key only if the key is absent.
// It returns the existing value and true when the key was already present,
// making repeated registration idempotent.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (V, bool) {
	if n, ok := m.index[key]; ok {
		return n.Value, true
	}
	n := &Node[K, V]{Key: key, Value: value}
	if m.last == nil {
		m.first = n
		m.last = n
	} else {
		m.last.next = n
		n.prev = m.last
		m.last = n
	}
	m.index[key] = n
	var zero V
	return zero, false
}

// Remove deletes the entry under key and returns its value.
// Live iterators are notified before the entry is unlinked so they can
// advance past it; the removed entry is never yielded afterwards.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	n, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(m.index, key)

	for it := range m.iters {
		it.supportRemove(n)
	}

	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.last = n.prev
	}
	n.next = nil
	n.prev = nil
	return n.Value, true
}

// Ascending returns an iterator over entries in insertion order.
// Entries appended after creation are not visited; the end is fixed at the
// entry that was newest when the iterator was created.
func (m *Map[K, V]) Ascending() *Iterator[K, V] {
	it := &Iterator[K, V]{m: m, next: m.first, expectedEnd: m.last}
	m.iters[it] = struct{}{}
	return it
}

// Descending returns an iterator over entries in reverse insertion order.
func (m *Map[K, V]) Descending() *Iterator[K, V] {
	it := &Iterator[K, V]{m: m, next: m.last, expectedEnd: m.first, reverse: true}
	m.iters[it] = struct{}{}
	return it
}

// AscendingWithAdditions returns a forward iterator that also visits entries
// appended while the iteration is in progress. Used by passes that drive
// observers up toward the owner's state, which must include latecomers.
func (m *Map[K, V]) AscendingWithAdditions() *AdditionsIterator[K, V] {
	it := &AdditionsIterator[K, V]{m: m, beforeStart: true}
	m.iters[it] = struct{}{}
	return it
}

// Iterator walks the map between two endpoints fixed at creation time.
// Callers must Close the iterator when the traversal ends.
type Iterator[K comparable, V any] struct {
	m           *Map[K, V]
	next        *Node[K, V]
	expectedEnd *Node[K, V]
	reverse     bool
}

// Next returns the next entry, or false when the traversal is exhausted.
func (it *Iterator[K, V]) Next() (*Node[K, V], bool) {
	n := it.next
	if n == nil {
		return nil, false
	}
	it.next = it.nextNode()
	return n, true
}

// Close deregisters the iterator from the map. Safe to call more than once.
func (it *Iterator[K, V]) Close() {
	delete(it.m.iters, it)
}

func (it *Iterator[K, V]) forward(n *Node[K, V]) *Node[K, V] {
	if it.reverse {
		return n.prev
	}
	return n.next
}

func (it *Iterator[K, V]) backward(n *Node[K, V]) *Node[K, V] {
	if it.reverse {
		return n.next
	}
	return n.prev
}

func (it *Iterator[K, V]) nextNode() *Node[K, V] {
	if it.next == it.expectedEnd || it.expectedEnd == nil {
		return nil
	}
	return it.forward(it.next)
}

func (it *Iterator[K, V]) supportRemove(n *Node[K, V]) {
	if it.expectedEnd == n && n == it.next {
		it.next = nil
		it.expectedEnd = nil
	}
	if it.expectedEnd == n {
		it.expectedEnd = it.backward(it.expectedEnd)
	}
	if it.next == n {
		it.next = it.nextNode()
	}
}

// AdditionsIterator walks the map in insertion order and also yields entries
// appended during the walk. Callers must Close it when the traversal ends.
type AdditionsIterator[K comparable, V any] struct {
	m           *Map[K, V]
	current     *Node[K, V]
	beforeStart bool
}

// Next returns the next entry, or false when the traversal is exhausted.
func (it *AdditionsIterator[K, V]) Next() (*Node[K, V], bool) {
	if it.beforeStart {
		it.beforeStart = false
		it.current = it.m.first
	} else if it.current != nil {
		it.current = it.current.next
	}
	return it.current, it.current != nil
}

// Close deregisters the iterator from the map. Safe to call more than once.
func (it *AdditionsIterator[K, V]) Close() {
	delete(it.m.iters, it)
}

func (it *AdditionsIterator[K, V]) supportRemove(n *Node[K, V]) {
	if it.current == n {
		it.current = n.prev
		it.beforeStart = it.current == nil
	}
}
