package component

// Physics carries per-tick motion for an entity with a Transform.
type Physics struct {
	Velocity Vec3 `yaml:"velocity"`
}
