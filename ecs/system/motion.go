package system

import (
	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
)

// MotionSystem integrates Physics velocity into Transform translation.
type MotionSystem struct{}

func NewMotionSystem() *MotionSystem {
	return &MotionSystem{}
}

func (s *MotionSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}
	for e, tf := range ecs.Each[component.Transform](w, ecs.TypeOf[component.Physics](w)) {
		phys := ecs.GetComponent[component.Physics](w, e)
		tf.Translate = tf.Translate.Add(phys.Value.Velocity.Scale(dt))
	}
}
