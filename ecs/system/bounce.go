package system

import (
	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
)

// BounceSystem keeps moving sprites inside a Width x Height area anchored at
// the origin by reflecting their velocity off the edges.
type BounceSystem struct {
	Width  float64
	Height float64

	// OnBounce, if set, is called once per entity per tick that hit an edge.
	OnBounce func(e ecs.Entity)
}

func NewBounceSystem(width, height float64) *BounceSystem {
	return &BounceSystem{Width: width, Height: height}
}

func (s *BounceSystem) Update(w *ecs.World, _ float64) {
	if w == nil {
		return
	}
	phys, sprites := ecs.TypeOf[component.Physics](w), ecs.TypeOf[component.Sprite](w)
	for e, tf := range ecs.Each[component.Transform](w, phys, sprites) {
		vel := &ecs.GetComponent[component.Physics](w, e).Value.Velocity
		sp := ecs.GetComponent[component.Sprite](w, e).Value

		hit := bounceAxis(&tf.Translate.X, &vel.X, sp.Width/2, s.Width-sp.Width/2)
		if bounceAxis(&tf.Translate.Y, &vel.Y, sp.Height/2, s.Height-sp.Height/2) {
			hit = true
		}
		if hit && s.OnBounce != nil {
			s.OnBounce(e)
		}
	}
}

// bounceAxis clamps pos into [lo, hi] and points vel back inside when it
// crossed an edge.
func bounceAxis(pos, vel *float64, lo, hi float64) bool {
	switch {
	case *pos < lo:
		*pos = lo
		if *vel < 0 {
			*vel = -*vel
		}
		return true
	case *pos > hi:
		*pos = hi
		if *vel > 0 {
			*vel = -*vel
		}
		return true
	}
	return false
}
