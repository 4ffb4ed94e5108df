package system

import (
	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
)

// TTLSystem counts TTL components down and deletes entities when they reach
// zero. Expired entities' components are left for lazy reclamation.
type TTLSystem struct{}

func NewTTLSystem() *TTLSystem {
	return &TTLSystem{}
}

func (s *TTLSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	var expired []ecs.Entity
	for e, ttl := range ecs.Each[component.TTL](w) {
		ttl.Ticks -= dt
		if ttl.Ticks <= 0 {
			expired = append(expired, e)
		}
	}

	for _, e := range expired {
		w.DeleteEntity(e)
	}
}
