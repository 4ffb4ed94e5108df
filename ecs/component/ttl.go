package component

// TTL destroys its entity once Ticks has run down.
type TTL struct {
	Ticks float64 `yaml:"ticks"`
}
