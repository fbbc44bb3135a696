// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import "fmt"

type intMapEntry[V any] struct {
	key   int32
	value V
	next  *intMapEntry[V]
}

// IntMap is a hash table keyed by int32 with chained buckets.
// The key itself is the hash. It grows to 2n+1 buckets whenever
// an insert would take it past its load threshold.
//
// IntMap is not safe for concurrent use.
type IntMap[V any] struct {
	table      []*intMapEntry[V]
	count      int
	threshold  int
	loadFactor float32
	free       *intMapEntry[V] // removed entries kept for reuse
	freeCount  int
}

// NewIntMap returns an IntMap with the default capacity and load factor.
func NewIntMap[V any]() *IntMap[V] {
	return NewIntMapSize[V](DefaultRegistryCapacity, DefaultRegistryLoadFactor)
}

// NewIntMapSize returns an IntMap with the given initial bucket count and load factor.
func NewIntMapSize[V any](capacity int, loadFactor float32) *IntMap[V] {
	if capacity < 0 {
		panic(fmt.Sprintf("illegal IntMap capacity %d", capacity))
	}
	if !(loadFactor > 0) {
		panic(fmt.Sprintf("illegal IntMap load factor %v", loadFactor))
	}
	if capacity == 0 {
		capacity = 1
	}
	return &IntMap[V]{
		table:      make([]*intMapEntry[V], capacity),
		loadFactor: loadFactor,
		threshold:  int(float32(capacity) * loadFactor),
	}
}

func (m *IntMap[V]) String() string {
	return fmt.Sprintf("[IntMap %d/%d]", m.count, len(m.table))
}

func bucketIndex(key int32, n int) int {
	return int(uint32(key)&0x7fffffff) % n
}

// Size returns the number of keys in the map.
func (m *IntMap[V]) Size() int {
	return m.count
}

// IsEmpty returns true if the map has no keys.
func (m *IntMap[V]) IsEmpty() bool {
	return m.count == 0
}

// Capacity returns the current number of buckets.
func (m *IntMap[V]) Capacity() int {
	return len(m.table)
}

// Get returns the value stored for key.
func (m *IntMap[V]) Get(key int32) (value V, ok bool) {
	for e := m.table[bucketIndex(key, len(m.table))]; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	return
}

// ContainsKey returns true if key is present.
func (m *IntMap[V]) ContainsKey(key int32) bool {
	_, ok := m.Get(key)
	return ok
}

// Put stores value under key, returning the previous value if there was one.
func (m *IntMap[V]) Put(key int32, value V) (prev V, replaced bool) {
	idx := bucketIndex(key, len(m.table))
	for e := m.table[idx]; e != nil; e = e.next {
		if e.key == key {
			prev, e.value = e.value, value
			return prev, true
		}
	}

	if m.count >= m.threshold {
		m.rehash()
		idx = bucketIndex(key, len(m.table))
	}

	e := m.allocEntry()
	e.key = key
	e.value = value
	e.next = m.table[idx]
	m.table[idx] = e
	m.count++
	return
}

// Remove deletes key, returning the value it had if it was present.
func (m *IntMap[V]) Remove(key int32) (value V, ok bool) {
	idx := bucketIndex(key, len(m.table))
	var prev *intMapEntry[V]
	for e := m.table[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				m.table[idx] = e.next
			} else {
				prev.next = e.next
			}
			m.count--
			value = e.value
			m.freeEntry(e)
			return value, true
		}
		prev = e
	}
	return
}

// Clear removes all keys. The bucket count is retained.
func (m *IntMap[V]) Clear() {
	for i, e := range m.table {
		for e != nil {
			next := e.next
			m.freeEntry(e)
			e = next
		}
		m.table[i] = nil
	}
	m.count = 0
}

// Keys returns a snapshot of the keys in unspecified order.
func (m *IntMap[V]) Keys() []int32 {
	keys := make([]int32, 0, m.count)
	for _, e := range m.table {
		for ; e != nil; e = e.next {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Values returns a snapshot of the values in unspecified order.
func (m *IntMap[V]) Values() []V {
	values := make([]V, 0, m.count)
	for _, e := range m.table {
		for ; e != nil; e = e.next {
			values = append(values, e.value)
		}
	}
	return values
}

// rehash grows the table to 2n+1 buckets and relinks every entry.
func (m *IntMap[V]) rehash() {
	oldTable := m.table
	newTable := make([]*intMapEntry[V], len(oldTable)*2+1)
	for _, e := range oldTable {
		for e != nil {
			next := e.next
			idx := bucketIndex(e.key, len(newTable))
			e.next = newTable[idx]
			newTable[idx] = e
			e = next
		}
	}
	m.table = newTable
	m.threshold = int(float32(len(newTable)) * m.loadFactor)
}

func (m *IntMap[V]) allocEntry() (e *intMapEntry[V]) {
	if e = m.free; e != nil {
		m.free = e.next
		m.freeCount--
		e.next = nil
		return
	}
	return &intMapEntry[V]{}
}

// freeEntry keeps at most one spare entry per bucket.
func (m *IntMap[V]) freeEntry(e *intMapEntry[V]) {
	var zero V
	e.value = zero
	if m.freeCount >= len(m.table) {
		e.next = nil
		return
	}
	e.next = m.free
	m.free = e
	m.freeCount++
}
