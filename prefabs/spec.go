package prefabs

import (
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SceneSpec describes the entities and systems of one scene.
type SceneSpec struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
	Systems  []SystemSpec `yaml:"systems"`
}

// EntitySpec spawns Count entities (default one) with the listed components,
// keyed by catalog name.
type EntitySpec struct {
	Name       string         `yaml:"name"`
	Count      int            `yaml:"count"`
	Components map[string]any `yaml:"components"`
}

// SystemSpec schedules either a built-in system by Name or a tengo Script.
type SystemSpec struct {
	Name     string         `yaml:"name"`
	Script   string         `yaml:"script"`
	Priority int            `yaml:"priority"`
	Params   map[string]any `yaml:"params"`
}

// LoadSpec decodes a yaml scene file from src.
func LoadSpec[T any](src Source, name string) (T, error) {
	var zero T
	data, err := src.ReadScene(name)
	if err != nil {
		return zero, eris.Wrapf(err, "prefabs: load %s", name)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, eris.Wrapf(err, "prefabs: unmarshal %s", name)
	}

	return spec, nil
}

func LoadScene(src Source, name string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](src, name)
}

// DecodeComponentSpec converts a loosely typed yaml value into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
