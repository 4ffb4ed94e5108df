// Package script exposes an ECS world to tengo scripts.
//
// Scripts import the "ecs" module to create and delete entities, read and
// write exposed component types by name, run queries and emit events.
// Entities cross the boundary as plain ints.
package script

import (
	"sort"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/engine"
)

// ModuleName is the import name of the ECS module inside scripts.
const ModuleName = "ecs"

// Stdlib modules available to scripts. os and io access is withheld.
var stdlibModules = []string{"math", "text", "times", "rand", "fmt", "json", "enum", "base64", "hex"}

type accessor struct {
	typeID func(w *ecs.World) ecs.TypeID
	has    func(w *ecs.World, e ecs.Entity) bool
	get    func(w *ecs.World, e ecs.Entity) (any, bool, error)
	set    func(w *ecs.World, e ecs.Entity, v any) error
	remove func(w *ecs.World, e ecs.Entity)
	idOf   func(w *ecs.World, e ecs.Entity) (ecs.ID, bool)
	byID   func(w *ecs.World, id ecs.ID) (ecs.Entity, any, bool, error)
	each   func(w *ecs.World, with []ecs.TypeID) []ecs.Entity
}

// Bridge binds one world, and optionally one event channel, to scripts.
type Bridge struct {
	world      *ecs.World
	events     *engine.Channel[engine.Event]
	components map[string]accessor
	log        zerolog.Logger
}

// NewBridge creates a bridge over w. events may be nil, in which case emit
// is a no-op.
func NewBridge(w *ecs.World, events *engine.Channel[engine.Event], log zerolog.Logger) *Bridge {
	return &Bridge{
		world:      w,
		events:     events,
		components: make(map[string]accessor),
		log:        log,
	}
}

// Expose makes T reachable from scripts under name. Values are converted
// through their yaml representation, so scripts see maps keyed by the yaml
// field names.
func Expose[T any](b *Bridge, name string) {
	b.components[name] = accessor{
		typeID: ecs.TypeOf[T],
		has:    ecs.HasComponent[T],
		get: func(w *ecs.World, e ecs.Entity) (any, bool, error) {
			entry := ecs.GetComponent[T](w, e)
			if !entry.Valid() {
				return nil, false, nil
			}
			v, err := toPlain(entry.Value)
			return v, true, err
		},
		set: func(w *ecs.World, e ecs.Entity, v any) error {
			if entry := ecs.GetComponent[T](w, e); entry.Valid() {
				next := *entry.Value
				if err := fromPlain(v, &next); err != nil {
					return err
				}
				*entry.Value = next
				return nil
			}
			var fresh T
			if err := fromPlain(v, &fresh); err != nil {
				return err
			}
			ecs.AddComponent(w, e, fresh)
			return nil
		},
		remove: ecs.RemoveComponent[T],
		idOf: func(w *ecs.World, e ecs.Entity) (ecs.ID, bool) {
			entry := ecs.GetComponent[T](w, e)
			return entry.ID.ID(), entry.Valid()
		},
		byID: func(w *ecs.World, id ecs.ID) (ecs.Entity, any, bool, error) {
			entry := ecs.GetComponentByID(w, ecs.NewComponentID[T](id))
			if !entry.Valid() {
				return ecs.NullEntity, nil, false, nil
			}
			v, err := toPlain(entry.Value)
			return entry.Entity, v, true, err
		},
		each: func(w *ecs.World, with []ecs.TypeID) []ecs.Entity {
			var out []ecs.Entity
			for e := range ecs.Iterate[T](w, with...) {
				out = append(out, e)
			}
			return out
		},
	}
}

// Components lists the exposed component names in sorted order.
func (b *Bridge) Components() []string {
	names := make([]string, 0, len(b.components))
	for name := range b.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Bridge) World() *ecs.World {
	return b.world
}

// Imports returns the module map handed to every script compiled against b.
func (b *Bridge) Imports() *tengo.ModuleMap {
	modules := stdlib.GetModuleMap(stdlibModules...)
	modules.AddBuiltinModule(ModuleName, b.Module())
	return modules
}

func toPlain(v any) (any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromPlain(v any, out any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
