// Package component holds the engine's built-in component types. Every type
// carries yaml tags so prefabs and scripts can read and write it.
package component

// Names used for the built-in types in prefabs and scripts.
const (
	DebugNameName = "debug_name"
	TransformName = "transform"
	PhysicsName   = "physics"
	SpriteName    = "sprite"
	TTLName       = "ttl"
)

// DebugName labels an entity in logs and tools.
type DebugName string
