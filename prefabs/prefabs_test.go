package prefabs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
	"github.com/milk9111/cyan/engine"
)

func TestCleanPath(t *testing.T) {
	cases := []struct {
		kind, in, want string
	}{
		{"scenes", "dvd.yaml", "scenes/dvd.yaml"},
		{"scenes", "scenes/dvd.yaml", "scenes/dvd.yaml"},
		{"scenes", "prefabs/scenes/dvd.yaml", "scenes/dvd.yaml"},
		{"scripts", `trail.tengo`, "scripts/trail.tengo"},
		{"scripts", "../../etc/passwd", "scripts/etc/passwd"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, cleanPath(c.kind, c.in), c.want)
		})
	}
}

func TestSourcePrefersDisk(t *testing.T) {
	dir := t.TempDir()
	assert.NilError(t, os.MkdirAll(filepath.Join(dir, "scenes"), 0o755))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "scenes", "a.yaml"), []byte("name: disk\n"), 0o600))

	src := Source{Dir: dir, FS: fstest.MapFS{
		"scenes/a.yaml": {Data: []byte("name: embedded\n")},
		"scenes/b.yaml": {Data: []byte("name: embedded b\n")},
	}}

	a, err := LoadScene(src, "a.yaml")
	assert.NilError(t, err)
	assert.Equal(t, a.Name, "disk")

	b, err := LoadScene(src, "b.yaml")
	assert.NilError(t, err)
	assert.Equal(t, b.Name, "embedded b")

	_, ok := src.ModTime(KindScene, "a.yaml")
	assert.Assert(t, ok)
	_, ok = src.ModTime(KindScene, "b.yaml")
	assert.Assert(t, !ok)

	_, err = LoadScene(src, "c.yaml")
	assert.Check(t, is.ErrorContains(err, "prefabs: load c.yaml"))
	_, err = LoadScene(Source{}, "c.yaml")
	assert.Check(t, is.ErrorContains(err, "prefabs: load c.yaml"))
}

func TestEmbeddedScenes(t *testing.T) {
	for _, name := range []string{"dvd.yaml", "swarm.yaml"} {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadScene(Embedded(""), name)
			assert.NilError(t, err)
			assert.Assert(t, len(spec.Entities) > 0)

			_, err = DefaultCatalog().Build(engine.NewScene(spec.Name, zerolog.Nop()), spec, Embedded(""))
			assert.NilError(t, err)
		})
	}
}

func TestSpawn(t *testing.T) {
	w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	c := DefaultCatalog()
	c.Install(w)

	ents, err := c.Spawn(w, EntitySpec{
		Name:  "box",
		Count: 3,
		Components: map[string]any{
			"transform": map[string]any{"translate": map[string]any{"x": 4, "y": 5}},
			"sprite":    map[string]any{"color": "red", "width": 2},
		},
	})
	assert.NilError(t, err)
	assert.Equal(t, len(ents), 3)
	for _, e := range ents {
		assert.Equal(t, ecs.GetComponent[component.Transform](w, e).Value.Translate, component.Vec3{X: 4, Y: 5})
		assert.Equal(t, *ecs.GetComponent[component.Sprite](w, e).Value, component.Sprite{Color: "red", Width: 2})
		assert.Equal(t, *ecs.GetComponent[component.DebugName](w, e).Value, component.DebugName("box"))
		assert.Assert(t, !ecs.HasComponent[component.Physics](w, e))
	}
	assert.Equal(t, ecs.ComponentRegistry[component.Sprite](w).Name(), "sprite")
}

func TestSpawnExplicitDebugName(t *testing.T) {
	w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
	ents, err := DefaultCatalog().Spawn(w, EntitySpec{
		Name:       "ignored",
		Components: map[string]any{"debug_name": "shown"},
	})
	assert.NilError(t, err)
	assert.Equal(t, *ecs.GetComponent[component.DebugName](w, ents[0]).Value, component.DebugName("shown"))
}

func TestSpawnErrors(t *testing.T) {
	cases := []struct {
		name string
		spec EntitySpec
		want string
	}{
		{"unknown_component", EntitySpec{Name: "x", Components: map[string]any{"health": 3}}, `unknown component "health"`},
		{"bad_value", EntitySpec{Name: "x", Components: map[string]any{
			"physics":   map[string]any{"velocity": "fast"},
			"transform": map[string]any{},
		}}, `component "physics"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld(ecs.WithLogger(zerolog.Nop()))
			_, err := DefaultCatalog().Spawn(w, c.spec)
			assert.Check(t, is.ErrorContains(err, c.want))
			assert.Equal(t, w.Len(), 0)
		})
	}
}

const testScene = `
name: test
entities:
  - name: ball
    components:
      transform: {translate: {x: 5, y: 5}}
      physics: {velocity: {x: -10}}
      sprite: {width: 2, height: 2}
systems:
  - name: bounce
    priority: 1
    params: {width: 100, height: 100}
  - name: motion
    priority: 0
  - script: count.tengo
    priority: 2
`

const countScript = `
ecs := import("ecs")
for _, e in ecs.query("transform") {
	ecs.emit("seen", e)
}
`

func testSource() Source {
	return Source{FS: fstest.MapFS{
		"scenes/test.yaml":    {Data: []byte(testScene)},
		"scripts/count.tengo": {Data: []byte(countScript)},
	}}
}

func TestBuild(t *testing.T) {
	src := testSource()
	spec, err := LoadScene(src, "test.yaml")
	assert.NilError(t, err)

	scene := engine.NewScene(spec.Name, zerolog.Nop())
	events := scene.Events().Subscribe()
	loaded, err := DefaultCatalog().Build(scene, spec, src)
	assert.NilError(t, err)
	assert.Equal(t, len(loaded.Entities), 1)
	assert.Equal(t, scene.Systems().Len(), 3)
	assert.DeepEqual(t, loaded.Scripts(), []string{"scripts/count.tengo"})

	ball := loaded.Entities[0]
	scene.Update(1)

	tf := ecs.GetComponent[component.Transform](scene.World(), ball).Value
	assert.Equal(t, tf.Translate.X, 1.0)
	assert.Equal(t, ecs.GetComponent[component.Physics](scene.World(), ball).Value.Velocity.X, 10.0)

	names := make([]string, 0)
	for _, ev := range events.Drain() {
		assert.Equal(t, ev.Entity, ball)
		names = append(names, ev.Name)
	}
	assert.DeepEqual(t, names, []string{"bounce", "seen"})
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name    string
		systems []SystemSpec
		want    string
	}{
		{"unknown_system", []SystemSpec{{Name: "gravity"}}, `unknown system "gravity"`},
		{"both", []SystemSpec{{Name: "motion", Script: "count.tengo"}}, "both name and script"},
		{"missing_script", []SystemSpec{{Script: "nope.tengo"}}, "load script nope.tengo"},
		{"bounce_without_bounds", []SystemSpec{{Name: "bounce"}}, "positive width and height"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			scene := engine.NewScene("bad", zerolog.Nop())
			_, err := DefaultCatalog().Build(scene, SceneSpec{Systems: c.systems}, testSource())
			assert.Check(t, is.ErrorContains(err, c.want))
		})
	}
}

func TestReloadScript(t *testing.T) {
	src := testSource()
	spec, err := LoadScene(src, "test.yaml")
	assert.NilError(t, err)
	scene := engine.NewScene(spec.Name, zerolog.Nop())
	loaded, err := DefaultCatalog().Build(scene, spec, src)
	assert.NilError(t, err)
	events := scene.Events().Subscribe()

	used, err := loaded.ReloadScript("count.tengo", []byte(`
ecs := import("ecs")
ecs.emit("reloaded")
`))
	assert.NilError(t, err)
	assert.Assert(t, used)

	scene.Update(0)
	names := []string{}
	for _, ev := range events.Drain() {
		names = append(names, ev.Name)
	}
	assert.Assert(t, slices.Contains(names, "reloaded"))
	assert.Assert(t, !slices.Contains(names, "seen"))

	used, err = loaded.ReloadScript("other.tengo", nil)
	assert.NilError(t, err)
	assert.Assert(t, !used)

	used, err = loaded.ReloadScript("scripts/count.tengo", []byte("{"))
	assert.Assert(t, used)
	assert.Check(t, is.ErrorContains(err, "compile"))
}

func TestReloadScriptSharedBySystems(t *testing.T) {
	scene := engine.NewScene("twice", zerolog.Nop())
	spec := SceneSpec{Systems: []SystemSpec{
		{Script: "count.tengo", Priority: 1},
		{Script: "count.tengo", Priority: 2},
	}}
	spec.Entities = []EntitySpec{{Name: "ball", Components: map[string]any{"transform": map[string]any{}}}}
	loaded, err := DefaultCatalog().Build(scene, spec, testSource())
	assert.NilError(t, err)
	events := scene.Events().Subscribe()

	used, err := loaded.ReloadScript("count.tengo", []byte(`
ecs := import("ecs")
ecs.emit("reloaded")
`))
	assert.NilError(t, err)
	assert.Assert(t, used)

	scene.Update(0)
	names := []string{}
	for _, ev := range events.Drain() {
		names = append(names, ev.Name)
	}
	assert.DeepEqual(t, names, []string{"reloaded", "reloaded"})
}

func TestDVDTrail(t *testing.T) {
	spec, err := LoadScene(Embedded(""), "dvd.yaml")
	assert.NilError(t, err)
	scene := engine.NewScene(spec.Name, zerolog.Nop())
	_, err = DefaultCatalog().Build(scene, spec, Embedded(""))
	assert.NilError(t, err)

	for range 5 {
		scene.Update(1)
	}
	w := scene.World()
	assert.Equal(t, w.Len(), 6)
	assert.Equal(t, len(slices.Collect(ecs.Iterate[component.TTL](w))), 5)

	for range 30 {
		scene.Update(1)
	}
	// Trail dots live for 20 ticks, so the population settles.
	assert.Assert(t, w.Len() <= 22, "live entities: %d", w.Len())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Change
		ok   bool
	}{
		{filepath.Join("prefabs", "scenes", "dvd.yaml"), Change{Kind: KindScene, Name: "dvd.yaml"}, true},
		{filepath.Join("prefabs", "scenes", "dvd.yml"), Change{Kind: KindScene, Name: "dvd.yml"}, true},
		{filepath.Join("prefabs", "scripts", "trail.tengo"), Change{Kind: KindScript, Name: "trail.tengo"}, true},
		{filepath.Join("prefabs", "scripts", "notes.txt"), Change{}, false},
		{filepath.Join("prefabs", "scenes", "trail.tengo"), Change{}, false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			got, ok := classify(c.path)
			assert.Equal(t, ok, c.ok)
			if ok {
				c.want.Path = c.path
			}
			assert.Equal(t, got, c.want)
		})
	}
}

func TestWatcherNeedsDirectory(t *testing.T) {
	_, err := NewWatcher(Source{})
	assert.Check(t, is.ErrorContains(err, "disk directory"))

	_, err = NewWatcher(Source{Dir: t.TempDir()})
	assert.Check(t, is.ErrorContains(err, "nothing to watch"))
}
