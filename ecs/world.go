package ecs

import (
	"iter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type entityMarker struct{}

// World owns entities and every component registry. It is not safe for
// concurrent use; callers serialise access, typically one writer per tick.
type World struct {
	entities Slots[entityMarker]
	types    *TypeMap

	log zerolog.Logger
}

// Option configures a World.
type Option func(*World)

// WithLogger routes registry diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(w *World) {
		w.log = l
	}
}

// NewWorld creates an empty ECS world.
func NewWorld(opts ...Option) *World {
	w := &World{log: log.Logger}
	for _, opt := range opts {
		opt(w)
	}
	w.types = NewTypeMap(w.log)
	return w
}

// NewEntity allocates a new entity with no components.
func (w *World) NewEntity() Entity {
	return Entity(w.entities.Add(entityMarker{}).ID)
}

// DeleteEntity destroys e. Its components stay in storage until touched by
// id or swept by Collect; lookups by entity stop seeing them immediately.
func (w *World) DeleteEntity(e Entity) {
	w.entities.Remove(ID(e))
}

// Exists reports whether e refers to a live entity.
func (w *World) Exists(e Entity) bool {
	return w.entities.Get(ID(e)).Valid()
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.Len()
}

// Entities yields every live entity in slot order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for id := range w.entities.All() {
			if !yield(Entity(id)) {
				return
			}
		}
	}
}

// Types exposes the component type map, mostly for diagnostics.
func (w *World) Types() *TypeMap {
	return w.types
}

// HasComponents reports whether e is alive and has a component of every
// listed type. An empty list is vacuously satisfied.
func (w *World) HasComponents(e Entity, types ...TypeID) bool {
	if len(types) == 0 {
		return true
	}
	if !w.Exists(e) {
		return false
	}
	for _, id := range types {
		s := w.types.lookup(id)
		if s == nil || !s.Has(e) {
			return false
		}
	}
	return true
}

// Collect removes every component whose owning entity no longer exists and
// returns how many were reclaimed.
func (w *World) Collect() int {
	n := 0
	w.types.each(func(s storage) {
		n += s.collect(w.Exists)
	})
	return n
}

// TypeOf returns T's id within w.
func TypeOf[T any](w *World) TypeID {
	return TypeIDOf[T](w.types)
}

// RegisterComponentType binds a diagnostic name to T.
func RegisterComponentType[T any](w *World, name string) {
	RegisterType[T](w.types, name)
}

// ComponentRegistry returns T's registry, creating it if needed.
func ComponentRegistry[T any](w *World) *Registry[T] {
	return RegistryOf[T](w.types)
}

// AddComponent attaches a copy of value to e. A second add of the same type
// keeps the original value and returns its entry.
func AddComponent[T any](w *World, e Entity, value T) ComponentEntry[T] {
	return ComponentRegistry[T](w).Add(e, value)
}

// EmplaceComponent attaches a zero T to e and runs init on it in place.
func EmplaceComponent[T any](w *World, e Entity, init func(*T)) ComponentEntry[T] {
	return ComponentRegistry[T](w).Emplace(e, init)
}

// GetComponent returns e's T component. Dead entities report not-found
// without consulting the registry.
func GetComponent[T any](w *World, e Entity) ComponentEntry[T] {
	if !w.Exists(e) {
		return nullEntry[T]()
	}
	return ComponentRegistry[T](w).Get(e)
}

// GetComponentByID resolves a component id. A component whose owner has been
// deleted is removed here and reported as not found.
func GetComponentByID[T any](w *World, cid ComponentID[T]) ComponentEntry[T] {
	reg := ComponentRegistry[T](w)
	entry := reg.GetByID(cid)
	if !entry.Valid() {
		return entry
	}
	if !w.Exists(entry.Entity) {
		reg.Remove(entry.ID)
		return nullEntry[T]()
	}
	return entry
}

// RemoveComponent detaches e's T component, if any.
func RemoveComponent[T any](w *World, e Entity) {
	ComponentRegistry[T](w).RemoveEntity(e)
}

// RemoveComponentByID deletes the component addressed by cid, if any.
func RemoveComponentByID[T any](w *World, cid ComponentID[T]) {
	ComponentRegistry[T](w).Remove(cid)
}

// HasComponent reports whether e is alive and has a T.
func HasComponent[T any](w *World, e Entity) bool {
	return GetComponent[T](w, e).Valid()
}

// ComponentExists reports whether cid still refers to a live component on a
// live entity.
func ComponentExists[T any](w *World, cid ComponentID[T]) bool {
	return GetComponentByID(w, cid).Valid()
}
