package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"
)

// ComponentID addresses one component of type T. Ids of different component
// types are distinct Go types and cannot be mixed up.
type ComponentID[T any] struct {
	id ID
}

// NewComponentID wraps a raw id, e.g. one handed through a script.
func NewComponentID[T any](id ID) ComponentID[T] {
	return ComponentID[T]{id: id}
}

func (c ComponentID[T]) ID() ID {
	return c.id
}

// ComponentEntry is a short-lived view of a component. Branch on Valid before
// touching Value, and re-resolve from ID after any add on the same type.
type ComponentEntry[T any] struct {
	Entity Entity
	ID     ComponentID[T]
	Value  *T
}

func (e ComponentEntry[T]) Valid() bool {
	return e.Value != nil
}

func nullEntry[T any]() ComponentEntry[T] {
	return ComponentEntry[T]{Entity: NullEntity, ID: ComponentID[T]{id: NullID}}
}

// Registry stores every component of one type together with the
// entity↔component index. An entity owns at most one component per registry.
type Registry[T any] struct {
	name string
	tid  TypeID

	slots       Slots[T]
	byEntity    *intmap.Map[Entity, ID]
	byComponent *intmap.Map[ID, Entity]

	log zerolog.Logger
}

func newRegistry[T any](tid TypeID, name string, log zerolog.Logger) *Registry[T] {
	return &Registry[T]{
		name:        name,
		tid:         tid,
		byEntity:    intmap.New[Entity, ID](64),
		byComponent: intmap.New[ID, Entity](64),
		log:         log,
	}
}

// Name returns the diagnostic name of the component type.
func (r *Registry[T]) Name() string {
	return r.name
}

func (r *Registry[T]) setName(name string) {
	r.name = name
}

func (r *Registry[T]) typeID() TypeID {
	return r.tid
}

// Add attaches a copy of value to e. If e already has a component of this
// type the new value is dropped and the existing entry is returned.
func (r *Registry[T]) Add(e Entity, value T) ComponentEntry[T] {
	if existing, ok := r.byEntity.Get(e); ok {
		r.warnDuplicate("add", e)
		return r.GetByID(ComponentID[T]{id: existing})
	}
	slot := r.slots.Add(value)
	return r.link(e, slot)
}

// Emplace attaches a zero T to e and initialises it in place.
func (r *Registry[T]) Emplace(e Entity, init func(*T)) ComponentEntry[T] {
	if existing, ok := r.byEntity.Get(e); ok {
		r.warnDuplicate("emplace", e)
		return r.GetByID(ComponentID[T]{id: existing})
	}
	slot := r.slots.Emplace(init)
	return r.link(e, slot)
}

func (r *Registry[T]) link(e Entity, slot Slot[T]) ComponentEntry[T] {
	r.byEntity.Put(e, slot.ID)
	r.byComponent.Put(slot.ID, e)
	return ComponentEntry[T]{Entity: e, ID: ComponentID[T]{id: slot.ID}, Value: slot.Value}
}

func (r *Registry[T]) warnDuplicate(op string, e Entity) {
	r.log.Warn().
		Str("component", r.name).
		Stringer("entity", e).
		Msgf("%s: entity already has a component of this type; new value discarded", op)
}

// Get returns e's component, if any.
func (r *Registry[T]) Get(e Entity) ComponentEntry[T] {
	id, ok := r.byEntity.Get(e)
	if !ok {
		return nullEntry[T]()
	}
	return r.GetByID(ComponentID[T]{id: id})
}

// GetByID resolves a component id along with its owning entity.
func (r *Registry[T]) GetByID(cid ComponentID[T]) ComponentEntry[T] {
	slot := r.slots.Get(cid.id)
	if !slot.Valid() {
		return nullEntry[T]()
	}
	owner, ok := r.byComponent.Get(cid.id)
	if !ok {
		owner = NullEntity
	}
	return ComponentEntry[T]{Entity: owner, ID: cid, Value: slot.Value}
}

// Remove deletes the component and both index directions. Unknown ids are
// ignored.
func (r *Registry[T]) Remove(cid ComponentID[T]) {
	owner, ok := r.byComponent.Get(cid.id)
	if !ok {
		return
	}
	r.byEntity.Del(owner)
	r.byComponent.Del(cid.id)
	r.slots.Remove(cid.id)
}

// RemoveEntity deletes e's component, if any.
func (r *Registry[T]) RemoveEntity(e Entity) {
	id, ok := r.byEntity.Get(e)
	if !ok {
		return
	}
	r.Remove(ComponentID[T]{id: id})
}

// Has reports whether e is linked to a component here. It does not check
// whether e itself is still alive.
func (r *Registry[T]) Has(e Entity) bool {
	return r.byEntity.Has(e)
}

// Len counts live components, orphans included until they are reclaimed.
func (r *Registry[T]) Len() int {
	return r.slots.Len()
}

// All yields owning entities and component values in storage order.
func (r *Registry[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for id, v := range r.slots.All() {
			owner, ok := r.byComponent.Get(id)
			if !ok {
				continue
			}
			if !yield(owner, v) {
				return
			}
		}
	}
}

// Entities yields owning entities in storage order.
func (r *Registry[T]) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for e := range r.All() {
			if !yield(e) {
				return
			}
		}
	}
}

// collect removes every component whose owner fails alive.
func (r *Registry[T]) collect(alive func(Entity) bool) int {
	var dead []ID
	for id, owner := range r.byComponent.All() {
		if !alive(owner) {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		r.Remove(ComponentID[T]{id: id})
	}
	if len(dead) > 0 {
		r.log.Debug().Str("component", r.name).Int("reclaimed", len(dead)).Msg("collected orphaned components")
	}
	return len(dead)
}
