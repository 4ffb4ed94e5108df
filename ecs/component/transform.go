package component

type Transform struct {
	Translate Vec3    `yaml:"translate"`
	Scale     Vec3    `yaml:"scale"`
	Rotation  float64 `yaml:"rotation"`
}
