package prefabs

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
	"github.com/milk9111/cyan/ecs/system"
	"github.com/milk9111/cyan/engine"
	"github.com/milk9111/cyan/script"
)

// SystemFactory builds a built-in system for scene from its spec.
type SystemFactory func(scene *engine.Scene, spec SystemSpec) (engine.System, error)

type componentKind struct {
	register func(w *ecs.World)
	spawn    func(w *ecs.World, e ecs.Entity, raw any) error
	expose   func(b *script.Bridge)
}

// Catalog maps yaml component and system names to Go types.
type Catalog struct {
	components map[string]componentKind
	systems    map[string]SystemFactory
}

func NewCatalog() *Catalog {
	return &Catalog{
		components: make(map[string]componentKind),
		systems:    make(map[string]SystemFactory),
	}
}

// Register makes T spawnable and scriptable under name.
func Register[T any](c *Catalog, name string) {
	c.components[name] = componentKind{
		register: func(w *ecs.World) {
			ecs.RegisterComponentType[T](w, name)
		},
		spawn: func(w *ecs.World, e ecs.Entity, raw any) error {
			v, err := DecodeComponentSpec[T](raw)
			if err != nil {
				return err
			}
			ecs.AddComponent(w, e, v)
			return nil
		},
		expose: func(b *script.Bridge) {
			script.Expose[T](b, name)
		},
	}
}

func (c *Catalog) RegisterSystem(name string, f SystemFactory) {
	c.systems[name] = f
}

// DefaultCatalog knows the built-in components and systems.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	Register[component.DebugName](c, component.DebugNameName)
	Register[component.Transform](c, component.TransformName)
	Register[component.Physics](c, component.PhysicsName)
	Register[component.Sprite](c, component.SpriteName)
	Register[component.TTL](c, component.TTLName)

	c.RegisterSystem("motion", func(*engine.Scene, SystemSpec) (engine.System, error) {
		return system.NewMotionSystem(), nil
	})
	c.RegisterSystem("bounce", func(scene *engine.Scene, spec SystemSpec) (engine.System, error) {
		params, err := DecodeComponentSpec[struct {
			Width  float64 `yaml:"width"`
			Height float64 `yaml:"height"`
		}](spec.Params)
		if err != nil {
			return nil, err
		}
		if params.Width <= 0 || params.Height <= 0 {
			return nil, eris.Errorf("bounce needs a positive width and height, got %vx%v", params.Width, params.Height)
		}
		s := system.NewBounceSystem(params.Width, params.Height)
		s.OnBounce = func(e ecs.Entity) {
			scene.Events().Publish(engine.Event{Name: "bounce", Entity: e})
		}
		return s, nil
	})
	c.RegisterSystem("ttl", func(*engine.Scene, SystemSpec) (engine.System, error) {
		return system.NewTTLSystem(), nil
	})
	c.RegisterSystem("recolor", func(scene *engine.Scene, spec SystemSpec) (engine.System, error) {
		params, err := DecodeComponentSpec[struct {
			Event   string   `yaml:"event"`
			Palette []string `yaml:"palette"`
		}](spec.Params)
		if err != nil {
			return nil, err
		}
		if params.Event == "" {
			params.Event = "bounce"
		}
		return system.NewRecolorSystem(scene.Events().Subscribe(), params.Event, params.Palette...), nil
	})
	return c
}

// Components lists the registered component names in sorted order.
func (c *Catalog) Components() []string {
	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install binds every catalog name to its component type in w.
func (c *Catalog) Install(w *ecs.World) {
	for _, name := range c.Components() {
		c.components[name].register(w)
	}
}

// Expose makes every catalog component reachable from scripts run by b.
func (c *Catalog) Expose(b *script.Bridge) {
	for _, name := range c.Components() {
		c.components[name].expose(b)
	}
}

// Spawn creates the entities described by spec. A named entity without an
// explicit debug_name gets its name as DebugName. On error the entities
// created so far are deleted.
func (c *Catalog) Spawn(w *ecs.World, spec EntitySpec) ([]ecs.Entity, error) {
	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		if _, ok := c.components[name]; !ok {
			return nil, eris.Errorf("prefabs: entity %q: unknown component %q", spec.Name, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	count := max(spec.Count, 1)
	ents := make([]ecs.Entity, 0, count)
	for range count {
		e := w.NewEntity()
		ents = append(ents, e)
		for _, name := range names {
			if err := c.components[name].spawn(w, e, spec.Components[name]); err != nil {
				for _, made := range ents {
					w.DeleteEntity(made)
				}
				return nil, eris.Wrapf(err, "prefabs: entity %q: component %q", spec.Name, name)
			}
		}
		if _, ok := spec.Components[component.DebugNameName]; !ok && spec.Name != "" {
			ecs.AddComponent(w, e, component.DebugName(spec.Name))
		}
	}
	return ents, nil
}

// Loaded is a scene built from a SceneSpec.
type Loaded struct {
	Scene    *engine.Scene
	Bridge   *script.Bridge
	Entities []ecs.Entity

	scripts map[string][]*script.System
	log     zerolog.Logger
}

// Build populates scene from spec. Scripted systems are read from src and
// share one bridge over the scene's world.
func (c *Catalog) Build(scene *engine.Scene, spec SceneSpec, src Source) (*Loaded, error) {
	w := scene.World()
	c.Install(w)

	bridge := script.NewBridge(w, scene.Events(), scene.Logger())
	c.Expose(bridge)

	l := &Loaded{
		Scene:   scene,
		Bridge:  bridge,
		scripts: make(map[string][]*script.System),
		log:     scene.Logger(),
	}
	for _, es := range spec.Entities {
		ents, err := c.Spawn(w, es)
		if err != nil {
			return nil, err
		}
		l.Entities = append(l.Entities, ents...)
	}

	for _, ss := range spec.Systems {
		sys, err := c.buildSystem(l, ss, src)
		if err != nil {
			return nil, err
		}
		scene.Systems().Add(sys, ss.Priority)
	}

	l.log.Info().
		Int("entities", len(l.Entities)).
		Int("systems", scene.Systems().Len()).
		Msg("scene loaded")
	return l, nil
}

func (c *Catalog) buildSystem(l *Loaded, spec SystemSpec, src Source) (engine.System, error) {
	switch {
	case spec.Script != "" && spec.Name != "":
		return nil, eris.Errorf("prefabs: system %q sets both name and script", spec.Name)
	case spec.Script != "":
		key := cleanPath("scripts", spec.Script)
		data, err := src.ReadScript(spec.Script)
		if err != nil {
			return nil, eris.Wrapf(err, "prefabs: load script %s", spec.Script)
		}
		sys, err := script.NewSystem(l.Bridge, key, data)
		if err != nil {
			return nil, err
		}
		l.scripts[key] = append(l.scripts[key], sys)
		return sys, nil
	default:
		f, ok := c.systems[spec.Name]
		if !ok {
			return nil, eris.Errorf("prefabs: unknown system %q", spec.Name)
		}
		sys, err := f(l.Scene, spec)
		if err != nil {
			return nil, eris.Wrapf(err, "prefabs: system %q", spec.Name)
		}
		return sys, nil
	}
}

// ReloadScript recompiles every scripted system loaded from name. It reports
// whether any system used the script. Systems that fail to compile keep
// their old program; the first error is returned.
func (l *Loaded) ReloadScript(name string, data []byte) (bool, error) {
	systems := l.scripts[cleanPath("scripts", name)]
	if len(systems) == 0 {
		return false, nil
	}
	var first error
	for _, sys := range systems {
		if err := sys.Reload(data); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		l.log.Info().Str("script", sys.Name()).Msg("script reloaded")
	}
	return true, first
}

// Scripts lists the loaded script paths.
func (l *Loaded) Scripts() []string {
	names := make([]string, 0, len(l.scripts))
	for name := range l.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

