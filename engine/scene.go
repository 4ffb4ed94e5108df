package engine

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/milk9111/cyan/ecs"
)

// Event is a named notification raised by systems or scripts.
type Event struct {
	Name   string
	Entity ecs.Entity
	Data   any
}

// Scene bundles one ECS world with the systems that update it.
type Scene struct {
	id      uuid.UUID
	name    string
	world   *ecs.World
	systems *Systems
	events  *Channel[Event]
	log     zerolog.Logger
}

// NewScene creates an empty scene. Its world logs through log tagged with
// the scene name and a fresh scene id.
func NewScene(name string, log zerolog.Logger) *Scene {
	id := uuid.New()
	sceneLog := log.With().Str("scene", name).Str("scene_id", id.String()).Logger()
	return &Scene{
		id:      id,
		name:    name,
		world:   ecs.NewWorld(ecs.WithLogger(sceneLog)),
		systems: NewSystems(),
		events:  NewChannel[Event](),
		log:     sceneLog,
	}
}

func (s *Scene) ID() uuid.UUID {
	return s.id
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) World() *ecs.World {
	return s.world
}

func (s *Scene) Systems() *Systems {
	return s.systems
}

func (s *Scene) Events() *Channel[Event] {
	return s.events
}

func (s *Scene) Logger() zerolog.Logger {
	return s.log
}

// Update runs every system once with dt elapsed ticks.
func (s *Scene) Update(dt float64) {
	s.systems.Update(s.world, dt)
}
