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

package dict

// cursor is the scan state shared by KeyIterator and ValueIterator. It
// borrows the backing array the Map had when the cursor was created; a later
// resize replaces the Map's array but leaves the cursor reading the old one.
type cursor[K comparable, V any] struct {
	slots []Slot[K, V]
	// pos is the index of the next slot to examine.
	pos int
	// remaining is the number of entries left to return. It is fixed to
	// Map.Len() at construction and never re-read.
	remaining int
}

func makeCursor[K comparable, V any](m *Map[K, V]) cursor[K, V] {
	return cursor[K, V]{
		slots:     m.slots,
		remaining: m.used,
	}
}

func (c *cursor[K, V]) hasNext() bool {
	return c.remaining > 0
}

// advance returns the next occupied slot at or after pos.
func (c *cursor[K, V]) advance() (*Slot[K, V], error) {
	if c.remaining <= 0 {
		return nil, ErrIteratorExhausted
	}
	for ; c.pos < len(c.slots); c.pos++ {
		if s := &c.slots[c.pos]; s.state == slotOccupied {
			c.pos++
			c.remaining--
			return s, nil
		}
	}
	// The map was mutated underneath the cursor and fewer entries remain
	// than were present when it was created.
	c.remaining = 0
	return nil, ErrIteratorExhausted
}

// KeyIterator is a single-pass cursor over the keys of a Map in backing-slot
// order. It is instantiated by Map.Keys.
//
// The behavior of a KeyIterator is undefined if the Map is mutated while
// the iterator is in use.
type KeyIterator[K comparable, V any] struct {
	c cursor[K, V]
}

// Keys returns an iterator over the keys currently in the map.
func (m *Map[K, V]) Keys() *KeyIterator[K, V] {
	return &KeyIterator[K, V]{c: makeCursor(m)}
}

// HasNext returns true if a call to Next will return a key.
func (it *KeyIterator[K, V]) HasNext() bool {
	return it.c.hasNext()
}

// Next returns the next key, or ErrIteratorExhausted if there are none left.
func (it *KeyIterator[K, V]) Next() (key K, err error) {
	s, err := it.c.advance()
	if err != nil {
		return key, err
	}
	return s.key, nil
}

// Remove is a noop. It does not remove the last returned key from the map.
func (it *KeyIterator[K, V]) Remove() error {
	return nil
}

// ValueIterator is a single-pass cursor over the values of a Map in
// backing-slot order. It is instantiated by Map.Values.
//
// The behavior of a ValueIterator is undefined if the Map is mutated while
// the iterator is in use.
type ValueIterator[K comparable, V any] struct {
	c cursor[K, V]
}

// Values returns an iterator over the values currently in the map.
func (m *Map[K, V]) Values() *ValueIterator[K, V] {
	return &ValueIterator[K, V]{c: makeCursor(m)}
}

// HasNext returns true if a call to Next will return a value.
func (it *ValueIterator[K, V]) HasNext() bool {
	return it.c.hasNext()
}

// Next returns the next value, or ErrIteratorExhausted if there are none
// left.
func (it *ValueIterator[K, V]) Next() (value V, err error) {
	s, err := it.c.advance()
	if err != nil {
		return value, err
	}
	return s.value, nil
}

// Remove always returns ErrUnsupportedOperation.
func (it *ValueIterator[K, V]) Remove() error {
	return ErrUnsupportedOperation
}
