package script

import (
	"bytes"
	"context"
	"slices"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
	"github.com/milk9111/cyan/engine"
)

func newTestBridge(t *testing.T) (*Bridge, *engine.Subscriber[engine.Event]) {
	t.Helper()
	w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	events := engine.NewChannel[engine.Event]()
	b := NewBridge(w, events, zerolog.Nop())
	Expose[component.Transform](b, component.TransformName)
	Expose[component.Physics](b, component.PhysicsName)
	Expose[component.TTL](b, component.TTLName)
	Expose[component.DebugName](b, component.DebugNameName)
	return b, events.Subscribe()
}

func exec(t *testing.T, b *Bridge, src string) {
	t.Helper()
	assert.NilError(t, Exec(context.Background(), b, []byte(src)))
}

// checkNoFailures reports every "fail" event a script emitted. Scripts use
// ecs.emit("fail", undefined, reason) in place of assertions.
func checkNoFailures(t *testing.T, sub *engine.Subscriber[engine.Event]) {
	t.Helper()
	for _, ev := range sub.Drain() {
		if ev.Name == "fail" {
			t.Errorf("script failed: %v", ev.Data)
		}
	}
}

func TestBridgeComponents(t *testing.T) {
	b, _ := newTestBridge(t)
	assert.DeepEqual(t, b.Components(), []string{"debug_name", "physics", "transform", "ttl"})
}

func TestScriptCreatesEntities(t *testing.T) {
	b, sub := newTestBridge(t)
	exec(t, b, `
ecs := import("ecs")
e := ecs.new_entity()
ecs.set_component(e, "transform", {translate: {x: 1.5, y: 2}})
ecs.set_component(e, "debug_name", "logo")
gone := ecs.new_entity()
ecs.delete_entity(gone)
if ecs.entity_exists(gone) {
	ecs.emit("fail", undefined, "deleted entity still exists")
}
`)
	checkNoFailures(t, sub)

	w := b.World()
	assert.Equal(t, w.Len(), 1)
	ents := slices.Collect(ecs.Iterate[component.Transform](w))
	assert.Equal(t, len(ents), 1)
	tf := ecs.GetComponent[component.Transform](w, ents[0]).Value
	assert.Equal(t, tf.Translate, component.Vec3{X: 1.5, Y: 2})
	assert.Equal(t, *ecs.GetComponent[component.DebugName](w, ents[0]).Value, component.DebugName("logo"))
}

func TestScriptReadsAndUpdatesComponents(t *testing.T) {
	b, sub := newTestBridge(t)
	w := b.World()
	e := w.NewEntity()
	ecs.AddComponent(w, e, component.Physics{Velocity: component.Vec3{X: 3, Y: 4}})
	ecs.AddComponent(w, e, component.TTL{Ticks: 10})

	exec(t, b, `
ecs := import("ecs")
for _, e in ecs.query("physics", "ttl") {
	p := ecs.get_component(e, "physics")
	ecs.set_component(e, "physics", {velocity: {x: p.velocity.y, y: p.velocity.x}})
	ecs.set_component(e, "ttl", {ticks: 2})
	if !ecs.has_component(e, "ttl") {
		ecs.emit("fail", e, "missing ttl")
	}
	if ecs.get_component(e, "transform") != undefined {
		ecs.emit("fail", e, "unexpected transform")
	}
	ecs.remove_component(e, "ttl")
}
`)
	checkNoFailures(t, sub)

	assert.Equal(t, ecs.GetComponent[component.Physics](w, e).Value.Velocity, component.Vec3{X: 4, Y: 3})
	assert.Assert(t, !ecs.HasComponent[component.TTL](w, e))
}

func TestScriptPartialUpdateKeepsOtherFields(t *testing.T) {
	b, _ := newTestBridge(t)
	w := b.World()
	e := w.NewEntity()
	ecs.AddComponent(w, e, component.Transform{Rotation: 0.5, Translate: component.Vec3{X: 1}})

	exec(t, b, `
ecs := import("ecs")
ecs.set_component(`+entityLiteral(e)+`, "transform", {rotation: 2})
`)
	tf := ecs.GetComponent[component.Transform](w, e).Value
	assert.Equal(t, tf.Rotation, 2.0)
	assert.Equal(t, tf.Translate.X, 1.0)
}

func TestScriptEmit(t *testing.T) {
	b, sub := newTestBridge(t)
	e := b.World().NewEntity()

	exec(t, b, `
ecs := import("ecs")
ecs.emit("hello")
ecs.emit("bounce", `+entityLiteral(e)+`, {edge: "left"})
ecs.emit("")
`)

	evs := sub.Drain()
	assert.Equal(t, len(evs), 2)
	assert.Equal(t, evs[0].Name, "hello")
	assert.Equal(t, evs[0].Entity, ecs.NullEntity)
	assert.Equal(t, evs[1].Entity, e)
	assert.DeepEqual(t, evs[1].Data, map[string]any{"edge": "left"})
}

func TestScriptUnknownComponentWarns(t *testing.T) {
	var buf bytes.Buffer
	w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	events := engine.NewChannel[engine.Event]()
	sub := events.Subscribe()
	b := NewBridge(w, events, zerolog.New(&buf))

	exec(t, b, `
ecs := import("ecs")
e := ecs.new_entity()
if ecs.set_component(e, "sprite", {width: 1}) {
	ecs.emit("fail", e, "set on unexposed component")
}
if len(ecs.query("sprite")) != 0 {
	ecs.emit("fail", e, "query on unexposed component")
}
`)
	checkNoFailures(t, sub)
	assert.Check(t, is.Contains(buf.String(), `"component":"sprite"`))
}

func TestScriptEmitWithoutChannel(t *testing.T) {
	w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	b := NewBridge(w, nil, zerolog.Nop())
	exec(t, b, `
ecs := import("ecs")
ecs.emit("nobody listens")
`)
}

func TestScriptComponentIDs(t *testing.T) {
	b, sub := newTestBridge(t)
	w := b.World()
	e := w.NewEntity()
	entry := ecs.AddComponent(w, e, component.TTL{Ticks: 7})
	gone := w.NewEntity()
	orphan := ecs.AddComponent(w, gone, component.TTL{Ticks: 1})
	w.DeleteEntity(gone)

	exec(t, b, `
ecs := import("ecs")
e := `+entityLiteral(e)+`
id := ecs.component_id(e, "ttl")
ecs.emit("id", e, id)
if ecs.component_id(e, "physics") != undefined {
	ecs.emit("fail", e, "id for a missing component")
}
got := ecs.get_component_by_id("ttl", id)
if got.entity != e || got.value.ticks != 7 {
	ecs.emit("fail", e, got)
}
if ecs.get_component_by_id("ttl", `+strconv.FormatUint(uint64(orphan.ID.ID()), 10)+`) != undefined {
	ecs.emit("fail", e, "orphan still readable")
}
`)

	evs := sub.Drain()
	assert.Assert(t, len(evs) > 0)
	assert.Equal(t, evs[0].Name, "id")
	assert.Equal(t, evs[0].Data, int64(uint64(entry.ID.ID())))
	for _, ev := range evs[1:] {
		t.Errorf("script failed: %v", ev.Data)
	}
	assert.Equal(t, ecs.ComponentRegistry[component.TTL](w).Len(), 1)
}

func TestExecErrors(t *testing.T) {
	b, _ := newTestBridge(t)
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `ecs := import("ecs"`, "compile"},
		{"no_os", `os := import("os")`, "compile"},
		{"arity", "ecs := import(\"ecs\")\necs.new_entity(1)", "run"},
		{"entity_type", "ecs := import(\"ecs\")\necs.entity_exists(\"x\")", "run"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Exec(context.Background(), b, []byte(c.src))
			assert.Check(t, is.ErrorContains(err, c.want))
		})
	}
}

const ageScript = `
ecs := import("ecs")
for _, e in ecs.query("ttl") {
	t := ecs.get_component(e, "ttl")
	ecs.set_component(e, "ttl", {ticks: t.ticks - dt})
}
`

func TestScriptedSystem(t *testing.T) {
	b, _ := newTestBridge(t)
	w := b.World()
	e := w.NewEntity()
	ecs.AddComponent(w, e, component.TTL{Ticks: 5})

	sys, err := NewSystem(b, "age.tengo", []byte(ageScript))
	assert.NilError(t, err)
	assert.Equal(t, sys.Name(), "age.tengo")

	systems := engine.NewSystems()
	systems.Add(sys, 0)
	systems.Update(w, 1.5)
	systems.Update(w, 0.5)
	assert.Equal(t, ecs.GetComponent[component.TTL](w, e).Value.Ticks, 3.0)
}

func TestScriptedSystemReload(t *testing.T) {
	b, _ := newTestBridge(t)
	w := b.World()
	e := w.NewEntity()
	ecs.AddComponent(w, e, component.TTL{Ticks: 5})

	sys, err := NewSystem(b, "age.tengo", []byte(ageScript))
	assert.NilError(t, err)

	err = sys.Reload([]byte("this is not tengo {"))
	assert.Check(t, is.ErrorContains(err, "age.tengo"))
	sys.Update(w, 1)
	assert.Equal(t, ecs.GetComponent[component.TTL](w, e).Value.Ticks, 4.0)

	assert.NilError(t, sys.Reload([]byte(`
ecs := import("ecs")
for _, e in ecs.query("ttl") {
	ecs.set_component(e, "ttl", {ticks: 100})
}
`)))
	sys.Update(w, 1)
	assert.Equal(t, ecs.GetComponent[component.TTL](w, e).Value.Ticks, 100.0)
}

func TestScriptedSystemIgnoresForeignWorld(t *testing.T) {
	b, _ := newTestBridge(t)
	sys, err := NewSystem(b, "age.tengo", []byte(ageScript))
	assert.NilError(t, err)

	other := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	e := other.NewEntity()
	ecs.AddComponent(other, e, component.TTL{Ticks: 5})
	sys.Update(other, 1)
	assert.Equal(t, ecs.GetComponent[component.TTL](other, e).Value.Ticks, 5.0)
}

func entityLiteral(e ecs.Entity) string {
	return strconv.FormatInt(int64(uint64(e)), 10)
}
