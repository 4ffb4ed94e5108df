package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSceneName is used when no scene is configured.
	DefaultSceneName = "Main Scene"

	DefaultCollectInterval = 120
)

// Engine owns the scenes and the simulation clock.
type Engine struct {
	scenes []*Scene
	active *Scene
	timer  *Timer
	log    zerolog.Logger

	sceneNames []string
	tasks      chan func()

	collectEvery float64
	sinceCollect float64
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithScene adds a scene. The first scene added becomes active.
func WithScene(name string) Option {
	return func(e *Engine) {
		e.sceneNames = append(e.sceneNames, name)
	}
}

func WithTimer(t *Timer) Option {
	return func(e *Engine) {
		e.timer = t
	}
}

// WithCollectInterval sweeps orphaned components from the active world
// every ticks simulation ticks. Zero disables the sweep.
func WithCollectInterval(ticks float64) Option {
	return func(e *Engine) {
		e.collectEvery = ticks
	}
}

// New builds an engine. Without WithScene it gets one DefaultSceneName scene;
// without WithTimer it ticks once per 1000/60 ms.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:          log.Logger,
		tasks:        make(chan func(), 64),
		collectEvery: DefaultCollectInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.timer == nil {
		e.timer = NewTimer(1000.0 / 60)
	}
	if len(e.sceneNames) == 0 {
		e.sceneNames = []string{DefaultSceneName}
	}
	for _, name := range e.sceneNames {
		e.AddScene(name)
	}
	return e
}

// AddScene creates a scene, activating it if none is active yet.
func (e *Engine) AddScene(name string) *Scene {
	s := NewScene(name, e.log)
	e.scenes = append(e.scenes, s)
	if e.active == nil {
		e.active = s
	}
	e.log.Debug().Str("scene", name).Str("scene_id", s.ID().String()).Msg("scene created")
	return s
}

// Scene finds a scene by name.
func (e *Engine) Scene(name string) (*Scene, bool) {
	for _, s := range e.scenes {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// SetActive switches the scene updated by Tick.
func (e *Engine) SetActive(name string) error {
	s, ok := e.Scene(name)
	if !ok {
		return eris.Errorf("engine: no scene named %q", name)
	}
	e.active = s
	return nil
}

func (e *Engine) Active() *Scene {
	return e.active
}

func (e *Engine) Timer() *Timer {
	return e.timer
}

func (e *Engine) Logger() zerolog.Logger {
	return e.log
}

// Tick advances the clock by ms of wall time and updates the active scene
// with the resulting tick count, which it returns.
func (e *Engine) Tick(ms float64) float64 {
	e.runTasks()
	ticks := e.timer.RecordMs(ms)
	if e.active != nil {
		e.active.Update(ticks)
		e.collect(ticks)
	}
	return ticks
}

func (e *Engine) collect(ticks float64) {
	if e.collectEvery <= 0 {
		return
	}
	e.sinceCollect += ticks
	if e.sinceCollect < e.collectEvery {
		return
	}
	e.sinceCollect = 0
	if n := e.active.World().Collect(); n > 0 {
		e.log.Debug().Int("components", n).Str("scene", e.active.Name()).Msg("swept orphaned components")
	}
}

// ReplaceScene swaps in s for the scene of the same name, keeping it active
// if the old one was. A scene with a new name is added.
func (e *Engine) ReplaceScene(s *Scene) {
	for i, old := range e.scenes {
		if old.Name() != s.Name() {
			continue
		}
		e.scenes[i] = s
		if e.active == old {
			e.active = s
		}
		return
	}
	e.scenes = append(e.scenes, s)
	if e.active == nil {
		e.active = s
	}
}

// Post queues fn to run on the tick goroutine before the next update. It is
// the only Engine method safe to call from other goroutines. While the queue
// is full Post blocks until ctx is done.
func (e *Engine) Post(ctx context.Context, fn func()) error {
	select {
	case e.tasks <- fn:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "engine: post")
	}
}

func (e *Engine) runTasks() {
	for {
		select {
		case fn := <-e.tasks:
			fn()
		default:
			return
		}
	}
}

// Run ticks every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return eris.Errorf("engine: invalid tick interval %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	e.log.Info().Dur("interval", interval).Str("scene", e.active.Name()).Msg("engine running")
	for {
		select {
		case <-ctx.Done():
			e.log.Info().Float64("elapsed_ticks", e.timer.Elapsed()).Msg("engine stopped")
			return nil
		case now := <-ticker.C:
			e.Tick(float64(now.Sub(last)) / float64(time.Millisecond))
			last = now
		}
	}
}
