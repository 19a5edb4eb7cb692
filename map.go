// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// package dict is a Go implementation of an open-addressing hash table with
// prime-sized tables, linear probing and lazy deletion via tombstones.
//
// # Design
//
// A Map stores every entry directly in a single backing array of slots. Each
// slot is in one of three states: empty (never occupied since the array was
// allocated), a tombstone (previously occupied, logically removed) or
// occupied. The zero Slot is empty, so a freshly allocated array needs no
// initialization.
//
// The length of the backing array is always prime. A key's home index is
// hash(key) mod length; using a prime length spreads keys whose hashes share
// common factors with the table size. On a collision the probe sequence
// advances one slot at a time (linear probing), wrapping at the end of the
// array. See https://en.wikipedia.org/wiki/Open_addressing.
//
// Deletion cannot simply mark a slot empty: a lookup for another key whose
// probe sequence passed through the slot would then stop early and report a
// present key as missing. Instead the slot becomes a tombstone which lookups
// step over. Insertions reuse the first tombstone on a key's probe path rather
// than the terminating empty slot, which keeps clusters short and reclaims
// the freed capacity.
//
// The load factor (occupied slots / length) is kept strictly below 1/2.
// Before a new key is installed the Map checks whether the insertion would
// reach that bound and, if so, allocates a new array of length
// NextPrime(2*length) and reinserts every occupied slot in index order.
// Tombstones are dropped by the resize. Because at least half of the slots
// are always empty or tombstones, every probe sequence terminates.
//
// # Iteration
//
// Keys and Values return single-pass cursors that walk the backing array in
// index order. All provides push-style iteration. Iteration order is the slot
// order, which is neither insertion order nor key order.
//
// A Map is NOT goroutine-safe.
package dict

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	debug = false

	// DefaultCapacity is the length of the backing array of a Map created
	// with an initialCapacity <= 0.
	DefaultCapacity = 101
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotTombstone
	slotOccupied
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotTombstone:
		return "tombstone"
	case slotOccupied:
		return "occupied"
	default:
		return fmt.Sprintf("slotState(%d)", uint8(s))
	}
}

// Slot holds a key and value. The zero Slot is empty. A tombstone retains
// neither its key nor its value.
type Slot[K comparable, V any] struct {
	key   K
	value V
	state slotState
}

// Map is an unordered map from keys to values with Put, Get, Delete, and
// iteration operations. By default, string keys are hashed with XXH3 and all
// other keys with hash/maphash, though a different hash function can be
// specified using the WithHash option.
//
// A Map is NOT goroutine-safe.
type Map[K comparable, V any] struct {
	// The hash function to each keys of type K.
	hash hashFn[K]
	seed uintptr
	// The allocator to use for the slots array.
	allocator Allocator[K, V]
	// slots is the backing array. Its length is always prime.
	slots []Slot[K, V]
	// The number of occupied slots (i.e. the number of elements in the map).
	// Tombstones are not counted.
	used int
	// nilableKeys is true if the zero K is a nil reference.
	nilableKeys bool
}

// New constructs a new Map. If initialCapacity is <= 0 the backing array has
// DefaultCapacity slots, otherwise it has NextPrime(initialCapacity) slots.
func New[K comparable, V any](initialCapacity int, options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	m.Init(initialCapacity, options...)
	return m
}

// Init initializes a Map with the specified initial capacity and options,
// discarding any previous contents. See New.
func (m *Map[K, V]) Init(initialCapacity int, options ...option[K, V]) {
	*m = Map[K, V]{
		hash:        getDefaultHasher[K](),
		seed:        newSeed(),
		allocator:   defaultAllocator[K, V]{},
		nilableKeys: nilableKey[K](),
	}

	for _, op := range options {
		op.apply(m)
	}

	capacity := DefaultCapacity
	if initialCapacity > 0 {
		capacity = NextPrime(initialCapacity)
	}
	m.slots = m.allocSlots(capacity)
	m.checkInvariants()
}

// Close closes the map, releasing any memory back to its configured
// allocator. It is unnecessary to close a map using the default allocator. It
// is invalid to use a Map after it has been closed, though Close itself is
// idempotent.
func (m *Map[K, V]) Close() {
	if m.slots != nil {
		m.allocator.FreeSlots(m.slots)
	}
	m.slots = nil
	m.used = 0
	m.allocator = nil
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists. If the key was present its previous
// value is returned along with replaced=true.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	h := m.hashKey(&key)
	i, found := m.probe(h, key)
	if found {
		s := &m.slots[i]
		if debug {
			fmt.Printf("put(updating): index=%d  key=%v\n", i, key)
		}
		prev, s.value = s.value, value
		m.checkInvariants()
		return prev, true
	}

	// Before performing the insertion we may decide the table is getting
	// overcrowded. The check includes the entry being added so that the load
	// factor is below 1/2 once the insertion completes.
	if m.tooFull() {
		m.resize(NextPrime(2 * len(m.slots)))
		i, _ = m.probe(h, key)
	}

	s := &m.slots[i]
	if s.state == slotOccupied {
		panic(fmt.Sprintf("slot at position %d is occupied by %v while inserting %v", i, s.key, key))
	}
	*s = Slot[K, V]{key: key, value: value, state: slotOccupied}
	m.used++
	if debug {
		fmt.Printf("put(inserting): index=%d used=%d\n", i, m.used)
	}
	m.checkInvariants()
	return prev, false
}

// Get retrieves the value from the map for the specified key, return ok=false
// if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i, found := m.probe(m.hashKey(&key), key)
	if !found {
		return value, false
	}
	return m.slots[i].value, true
}

// Contains returns true if the map contains an entry for key.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.probe(m.hashKey(&key), key)
	return found
}

// Delete deletes the entry corresponding to the specified key from the map
// and returns its value. It is a noop to delete a non-existent key, in which
// case ok=false is returned.
func (m *Map[K, V]) Delete(key K) (removed V, ok bool) {
	i, found := m.probe(m.hashKey(&key), key)
	if !found {
		if debug {
			fmt.Printf("delete(%v): not found\n", key)
		}
		return removed, false
	}

	// The slot becomes a tombstone rather than empty so that probe sequences
	// for other keys which passed through it remain intact.
	s := &m.slots[i]
	removed = s.value
	*s = Slot[K, V]{state: slotTombstone}
	m.used--
	if debug {
		fmt.Printf("delete(%v): index=%d used=%d\n", key, i, m.used)
	}
	m.checkInvariants()
	return removed, true
}

// All calls yield sequentially for each key and value present in the map. If
// yield returns false, range stops the iteration. The map can be mutated
// during iteration, though there is no guarantee that the mutations will be
// visible to the iteration.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the slots so that iteration remains valid if the map is
	// resized during iteration.
	slots := m.slots
	for i := range slots {
		s := &slots[i]
		if s.state != slotOccupied {
			continue
		}
		if !yield(s.key, s.value) {
			return
		}
	}
}

// Clear deletes all entries from the map resulting in an empty map. The
// length of the backing array is retained.
func (m *Map[K, V]) Clear() {
	clear(m.slots)
	m.used = 0
	m.checkInvariants()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// IsEmpty returns true if the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.used == 0
}

// Cap returns the length of the backing array. It is always prime.
func (m *Map[K, V]) Cap() int {
	return len(m.slots)
}

// hashKey returns hash(key), panicking if key is a nil reference.
func (m *Map[K, V]) hashKey(key *K) uintptr {
	if m.nilableKeys {
		var zero K
		if *key == zero {
			panic(errors.Wrapf(ErrInvalidKey, "nil %s key", typeName[K]()))
		}
	}
	return m.hash(key, m.seed)
}

// tooFull returns true if inserting one more entry would bring the load
// factor to 1/2 or above.
func (m *Map[K, V]) tooFull() bool {
	return 2*(m.used+1) >= len(m.slots)
}

// probe locates the slot for key. If key is present its index is returned
// with found=true. Otherwise the returned index is where key should be
// inserted: the first tombstone on the probe path if there is one, else the
// empty slot that terminated the search.
//
// Tombstones never terminate the search since key may have been inserted
// further along the probe path before the tombstone's entry was deleted.
func (m *Map[K, V]) probe(h uintptr, key K) (index uintptr, found bool) {
	seq := makeProbeSeq(h, uintptr(len(m.slots)))
	if debug {
		fmt.Printf("probe(%v): %s\n", key, seq)
	}

	var tombstone uintptr
	sawTombstone := false
	for {
		s := &m.slots[seq.offset]
		switch s.state {
		case slotOccupied:
			if key == s.key {
				return seq.offset, true
			}
		case slotTombstone:
			if !sawTombstone {
				tombstone, sawTombstone = seq.offset, true
			}
		case slotEmpty:
			if debug {
				fmt.Printf("probe(not-found): offset=%d tombstone=%t/%d\n",
					seq.offset, sawTombstone, tombstone)
			}
			if sawTombstone {
				return tombstone, false
			}
			return seq.offset, false
		}

		seq = seq.next()
		if seq.wrapped() {
			// Every slot is occupied by another key or is a tombstone. The
			// load factor bound guarantees at least one tombstone was seen.
			if sawTombstone {
				return tombstone, false
			}
			return seq.offset, false
		}
	}
}

// uncheckedPut inserts an entry known not to be in the table into the first
// non-occupied slot of its probe sequence. Used by resize, where the new array
// contains no tombstones and no duplicates.
func (m *Map[K, V]) uncheckedPut(h uintptr, key K, value V) {
	seq := makeProbeSeq(h, uintptr(len(m.slots)))
	for m.slots[seq.offset].state == slotOccupied {
		seq = seq.next()
	}
	m.slots[seq.offset] = Slot[K, V]{key: key, value: value, state: slotOccupied}
	m.used++
}

// resize replaces the backing array with one of newCapacity slots,
// reinserting every occupied slot of the old array in index order and
// dropping tombstones. The old array is handed back to the allocator.
func (m *Map[K, V]) resize(newCapacity int) {
	oldSlots := m.slots
	m.slots = m.allocSlots(newCapacity)
	m.used = 0

	if debug {
		fmt.Printf("resize: capacity=%d->%d\n", len(oldSlots), newCapacity)
	}

	for i := range oldSlots {
		s := &oldSlots[i]
		if s.state != slotOccupied {
			continue
		}
		m.uncheckedPut(m.hash(&s.key, m.seed), s.key, s.value)
	}

	m.allocator.FreeSlots(oldSlots)
	m.checkInvariants()
}

// allocSlots allocates an array of n empty slots.
func (m *Map[K, V]) allocSlots(n int) []Slot[K, V] {
	slots := m.allocator.AllocSlots(n)
	// Allocators that recycle memory may hand back dirty slots.
	clear(slots)
	return slots
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if !isPrime(len(m.slots)) {
			panic(fmt.Sprintf("invariant failed: capacity %d is not prime", len(m.slots)))
		}

		// For every occupied slot, verify that probing for its key finds this
		// slot and not some other one. This also verifies keys are unique.
		var used int
		for i := range m.slots {
			s := &m.slots[i]
			if s.state != slotOccupied {
				continue
			}
			j, found := m.probe(m.hash(&s.key, m.seed), s.key)
			if !found || j != uintptr(i) {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v found=%t at %d\n%s",
					i, s.key, found, j, m.debugString()))
			}
			used++
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}

		if 2*m.used >= len(m.slots) {
			panic(fmt.Sprintf("invariant failed: load factor %d/%d is not below 1/2",
				m.used, len(m.slots)))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", len(m.slots), m.used)
	for i := range m.slots {
		switch s := &m.slots[i]; s.state {
		case slotOccupied:
			h := m.hash(&s.key, m.seed)
			fmt.Fprintf(&buf, "  %4d: %v [home=%d]\n", i, s.key, h%uintptr(len(m.slots)))
		default:
			fmt.Fprintf(&buf, "  %4d: %s\n", i, s.state)
		}
	}
	return buf.String()
}

// probeSeq maintains the state for a linear probe sequence. The sequence
// starts at hash mod length and visits consecutive slots, wrapping around at
// the end of the array:
//
//	p(i) := (hash + i) mod length
//
// Every slot is visited exactly once before the sequence returns to its
// starting offset, which wrapped reports.
type probeSeq struct {
	length uintptr
	start  uintptr
	offset uintptr
	index  uintptr
}

func makeProbeSeq(hash, length uintptr) probeSeq {
	offset := hash % length
	return probeSeq{
		length: length,
		start:  offset,
		offset: offset,
		index:  0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	s.offset++
	if s.offset == s.length {
		s.offset = 0
	}
	return s
}

// wrapped returns true once the sequence has returned to its starting offset.
func (s probeSeq) wrapped() bool {
	return s.index > 0 && s.offset == s.start
}

func (s probeSeq) String() string {
	return fmt.Sprintf("length=%d offset=%d index=%d", s.length, s.offset, s.index)
}
