package engine

import (
	"reflect"
	"sort"

	"github.com/milk9111/cyan/ecs"
)

// System updates a world once per tick. dt is the number of simulation
// ticks that elapsed since the previous update.
type System interface {
	Update(w *ecs.World, dt float64)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *ecs.World, dt float64)

func (f SystemFunc) Update(w *ecs.World, dt float64) {
	f(w, dt)
}

// MaxPriority is the largest accepted priority; lower values run first.
const MaxPriority = 8

// Priority clamps p into [0, MaxPriority].
func Priority(p int) int {
	return min(max(p, 0), MaxPriority)
}

type scheduled struct {
	system   System
	priority int
}

// Systems runs its systems in ascending priority. Systems sharing a
// priority keep their insertion order.
type Systems struct {
	systems []scheduled
}

func NewSystems() *Systems {
	return &Systems{}
}

// Add schedules system at the clamped priority.
func (s *Systems) Add(system System, priority int) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, scheduled{system: system, priority: Priority(priority)})
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].priority < s.systems[j].priority
	})
}

// Remove unschedules system. It reports whether it was scheduled. Systems
// of non-comparable types, such as SystemFunc, cannot be removed.
func (s *Systems) Remove(system System) bool {
	if system == nil || !reflect.TypeOf(system).Comparable() {
		return false
	}
	for i, sc := range s.systems {
		if reflect.TypeOf(sc.system) == reflect.TypeOf(system) && sc.system == system {
			s.systems = append(s.systems[:i], s.systems[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Systems) Update(w *ecs.World, dt float64) {
	for _, sc := range s.systems {
		sc.system.Update(w, dt)
	}
}

// Systems returns the schedule in run order.
func (s *Systems) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	for _, sc := range s.systems {
		systems = append(systems, sc.system)
	}
	return systems
}

func (s *Systems) Len() int {
	return len(s.systems)
}
