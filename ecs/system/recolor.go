package system

import (
	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
	"github.com/milk9111/cyan/engine"
)

// RecolorSystem steps a sprite through Palette each time an event named
// Event is raised for its entity.
type RecolorSystem struct {
	Event   string
	Palette []string

	events *engine.Subscriber[engine.Event]
	next   map[ecs.Entity]int
}

func NewRecolorSystem(events *engine.Subscriber[engine.Event], event string, palette ...string) *RecolorSystem {
	return &RecolorSystem{
		Event:   event,
		Palette: palette,
		events:  events,
		next:    make(map[ecs.Entity]int),
	}
}

func (s *RecolorSystem) Update(w *ecs.World, _ float64) {
	for _, ev := range s.events.Drain() {
		if ev.Name != s.Event || len(s.Palette) == 0 {
			continue
		}
		sp := ecs.GetComponent[component.Sprite](w, ev.Entity)
		if !sp.Valid() {
			delete(s.next, ev.Entity)
			continue
		}
		i := s.next[ev.Entity] % len(s.Palette)
		if s.Palette[i] == sp.Value.Color {
			i = (i + 1) % len(s.Palette)
		}
		sp.Value.Color = s.Palette[i]
		s.next[ev.Entity] = i + 1
	}
	for e := range s.next {
		if !w.Exists(e) {
			delete(s.next, e)
		}
	}
}
