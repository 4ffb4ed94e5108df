package component

// Sprite is drawn as a filled rectangle centred on the entity's Transform.
// Color is an SVG colour name, e.g. "orchid".
type Sprite struct {
	Color  string  `yaml:"color"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Layer  int     `yaml:"layer"`
}
