package ecs

import (
	"iter"
	"reflect"

	"github.com/rs/zerolog"
)

// TypeID is the sequential id a TypeMap gives each distinct component type.
type TypeID int

// storage is the type-erased face of a *Registry[T].
type storage interface {
	Name() string
	Len() int
	Has(e Entity) bool
	RemoveEntity(e Entity)
	setName(name string)
	typeID() TypeID
	collect(alive func(Entity) bool) int
}

var _ storage = (*Registry[struct{}])(nil)

// TypeMap hands out one TypeID and one Registry per component type. Ids are
// assigned on first use, grow monotonically and are never reused.
type TypeMap struct {
	ids      map[reflect.Type]TypeID
	names    []string
	storages []storage

	log zerolog.Logger
}

// NewTypeMap returns an empty map that reports through log.
func NewTypeMap(log zerolog.Logger) *TypeMap {
	return &TypeMap{
		ids: make(map[reflect.Type]TypeID),
		log: log,
	}
}

// TypeIDOf returns T's id, allocating the next one on first sight of T.
func TypeIDOf[T any](m *TypeMap) TypeID {
	t := reflect.TypeFor[T]()
	if id, ok := m.ids[t]; ok {
		return id
	}
	id := TypeID(len(m.names))
	m.ids[t] = id
	m.names = append(m.names, t.String())
	m.storages = append(m.storages, nil)
	return id
}

// RegisterType names T. Naming a type whose registry already exists is
// allowed but logged: components should be registered before first use.
func RegisterType[T any](m *TypeMap, name string) {
	id := TypeIDOf[T](m)
	if m.storages[id] == nil {
		m.names[id] = name
		m.storages[id] = newRegistry[T](id, name, m.log)
		return
	}

	m.log.Warn().
		Int("type_id", int(id)).
		Str("name", name).
		Str("old_name", m.names[id]).
		Msg("component type registered after its registry was created; renaming")
	if name == "" {
		return
	}
	m.names[id] = name
	m.storages[id].setName(name)
}

// RegistryOf returns T's registry, creating it on first access.
func RegistryOf[T any](m *TypeMap) *Registry[T] {
	id := TypeIDOf[T](m)
	if s := m.storages[id]; s != nil {
		return s.(*Registry[T])
	}
	r := newRegistry[T](id, m.names[id], m.log)
	m.storages[id] = r
	return r
}

// Name returns the diagnostic name bound to id, or "" for unknown ids.
func (m *TypeMap) Name(id TypeID) string {
	if id < 0 || int(id) >= len(m.names) {
		return ""
	}
	return m.names[id]
}

// Len returns how many distinct types have been seen.
func (m *TypeMap) Len() int {
	return len(m.names)
}

// Counts yields the name and stored component count, orphans included, of
// every type that has a registry.
func (m *TypeMap) Counts() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for id, s := range m.storages {
			if s == nil {
				continue
			}
			if !yield(m.names[id], s.Len()) {
				return
			}
		}
	}
}

// Release drops the registry behind id together with all of its components.
// The id and name stay bound to the type; the next access starts empty.
func (m *TypeMap) Release(id TypeID) {
	if id < 0 || int(id) >= len(m.storages) {
		return
	}
	m.storages[id] = nil
}

// lookup returns the registry behind id without creating it.
func (m *TypeMap) lookup(id TypeID) storage {
	if id < 0 || int(id) >= len(m.storages) {
		return nil
	}
	return m.storages[id]
}

func (m *TypeMap) each(fn func(storage)) {
	for _, s := range m.storages {
		if s != nil {
			fn(s)
		}
	}
}
