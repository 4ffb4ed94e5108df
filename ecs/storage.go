package ecs

import (
	"iter"

	"github.com/milk9111/cyan/internal/invariant"
)

// Slot refers to a value held by a Slots allocator. Keep the ID, not the
// Slot: Value is only good until the next Add or Emplace on the same
// allocator.
type Slot[T any] struct {
	ID    ID
	Value *T
}

// Valid reports whether the slot points at a live value.
func (s Slot[T]) Valid() bool {
	return s.Value != nil
}

type slotState struct {
	id   ID
	live bool
}

// Slots is a reusable array whose entries are addressed by generation-checked
// ids. Every operation is total: stale or malformed ids produce invalid slots
// rather than errors.
type Slots[T any] struct {
	states []slotState
	values []T

	// free is a FIFO of reusable indices; head marks its logical start.
	free []uint32
	head int
}

// Add stores a copy of value and returns its slot.
func (s *Slots[T]) Add(value T) Slot[T] {
	idx := s.claim()
	s.values[idx] = value
	return Slot[T]{ID: s.states[idx].id, Value: &s.values[idx]}
}

// Emplace claims a zeroed slot and lets init fill it in place.
func (s *Slots[T]) Emplace(init func(*T)) Slot[T] {
	idx := s.claim()
	if init != nil {
		init(&s.values[idx])
	}
	return Slot[T]{ID: s.states[idx].id, Value: &s.values[idx]}
}

func (s *Slots[T]) claim() uint32 {
	invariant.Check(len(s.states) == len(s.values), "slot arrays diverged: %d ids, %d values", len(s.states), len(s.values))

	if idx, ok := s.popFree(); ok {
		st := &s.states[idx]
		invariant.Check(!st.live, "free index %d is occupied", idx)
		st.id = makeID(st.id.Generation()+1, idx)
		st.live = true
		var zero T
		s.values[idx] = zero
		return idx
	}

	idx := uint32(len(s.states))
	s.states = append(s.states, slotState{id: makeID(0, idx), live: true})
	var zero T
	s.values = append(s.values, zero)
	return idx
}

// Get resolves id. The slot is invalid unless the index is in range and the
// stored id matches exactly.
func (s *Slots[T]) Get(id ID) Slot[T] {
	idx := id.Index()
	if int(idx) >= len(s.states) {
		return Slot[T]{ID: NullID}
	}
	st := s.states[idx]
	if !st.live || st.id != id {
		return Slot[T]{ID: NullID}
	}
	return Slot[T]{ID: id, Value: &s.values[idx]}
}

// Remove frees the slot addressed by id. Ids that do not match the live slot
// are ignored.
func (s *Slots[T]) Remove(id ID) bool {
	invariant.Check(len(s.states) == len(s.values), "slot arrays diverged: %d ids, %d values", len(s.states), len(s.values))

	idx := id.Index()
	if int(idx) >= len(s.states) {
		return false
	}
	st := &s.states[idx]
	if !st.live || st.id != id {
		return false
	}
	st.live = false
	var zero T
	s.values[idx] = zero
	s.free = append(s.free, idx)
	return true
}

// Len returns the number of occupied slots.
func (s *Slots[T]) Len() int {
	return len(s.states) - (len(s.free) - s.head)
}

// All yields live slots in index order. The sequence reads the allocator as
// it goes; do not add to it mid-iteration.
func (s *Slots[T]) All() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		for i := 0; i < len(s.states); i++ {
			st := s.states[i]
			if !st.live {
				continue
			}
			if !yield(st.id, &s.values[i]) {
				return
			}
		}
	}
}

func (s *Slots[T]) popFree() (uint32, bool) {
	if s.head >= len(s.free) {
		return 0, false
	}
	idx := s.free[s.head]
	s.head++
	if s.head == len(s.free) {
		s.free = s.free[:0]
		s.head = 0
	} else if s.head > 32 && s.head*2 > len(s.free) {
		n := copy(s.free, s.free[s.head:])
		s.free = s.free[:n]
		s.head = 0
	}
	return idx, true
}
