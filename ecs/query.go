package ecs

import "iter"

// Iterate yields every live entity that has a P and all of with. P's
// registry is walked in storage order and each candidate is filtered, so
// pick the rarest type as P. The sequence is a live view and can be ranged
// over again; do not add components of P or of a filtered type while it
// runs.
func Iterate[P any](w *World, with ...TypeID) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for e := range Each[P](w, with...) {
			if !yield(e) {
				return
			}
		}
	}
}

// Each is Iterate that also yields the primary component.
func Each[P any](w *World, with ...TypeID) iter.Seq2[Entity, *P] {
	return func(yield func(Entity, *P) bool) {
		reg := ComponentRegistry[P](w)
		for e, v := range reg.All() {
			if !w.Exists(e) || !w.HasComponents(e, with...) {
				continue
			}
			if !yield(e, v) {
				return
			}
		}
	}
}
