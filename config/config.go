// Package config loads runtime settings for the cyan executables.
//
// Settings start from Default, are overlaid by an optional yaml file, and are
// finally overridden by CYAN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	envconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	LogLevel  string `yaml:"log_level" config:"CYAN_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" config:"CYAN_LOG_FORMAT"`

	// MsPerTick is the wall-clock length of one simulation tick at speed 1.
	MsPerTick float64 `yaml:"ms_per_tick" config:"CYAN_MS_PER_TICK"`
	Speed     float64 `yaml:"speed" config:"CYAN_SPEED"`

	Scene     string `yaml:"scene" config:"CYAN_SCENE"`
	PrefabDir string `yaml:"prefab_dir" config:"CYAN_PREFAB_DIR"`
	// Watch enables hot reload of scene and script files. The environment can
	// only switch it on.
	Watch bool `yaml:"watch" config:"CYAN_WATCH"`

	WindowWidth  int    `yaml:"window_width" config:"CYAN_WINDOW_WIDTH"`
	WindowHeight int    `yaml:"window_height" config:"CYAN_WINDOW_HEIGHT"`
	WindowTitle  string `yaml:"window_title" config:"CYAN_WINDOW_TITLE"`
}

func Default() Config {
	return Config{
		LogLevel:     zerolog.InfoLevel.String(),
		LogFormat:    FormatConsole,
		MsPerTick:    1000.0 / 60,
		Speed:        1,
		Scene:        "dvd.yaml",
		PrefabDir:    "prefabs",
		WindowWidth:  640,
		WindowHeight: 480,
		WindowTitle:  "cyan",
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "config: read %s", path)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "config: parse %s", path)
		}
	}

	var env Config
	if err := envconfig.FromEnv().To(&env); err != nil {
		return Config{}, eris.Wrap(err, "config: read environment")
	}
	cfg.merge(env)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// merge copies every non-zero field of o into c.
func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.MsPerTick != 0 {
		c.MsPerTick = o.MsPerTick
	}
	if o.Speed != 0 {
		c.Speed = o.Speed
	}
	if o.Scene != "" {
		c.Scene = o.Scene
	}
	if o.PrefabDir != "" {
		c.PrefabDir = o.PrefabDir
	}
	if o.Watch {
		c.Watch = true
	}
	if o.WindowWidth != 0 {
		c.WindowWidth = o.WindowWidth
	}
	if o.WindowHeight != 0 {
		c.WindowHeight = o.WindowHeight
	}
	if o.WindowTitle != "" {
		c.WindowTitle = o.WindowTitle
	}
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return eris.Wrapf(err, "config: log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case FormatJSON, FormatConsole:
	default:
		return eris.Errorf("config: log format %q is not %q or %q", c.LogFormat, FormatJSON, FormatConsole)
	}
	if c.MsPerTick <= 0 {
		return eris.Errorf("config: ms per tick must be positive, got %v", c.MsPerTick)
	}
	if c.Speed < 0 {
		return eris.Errorf("config: speed must not be negative, got %v", c.Speed)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return eris.Errorf("config: window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	return nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.Nop(), eris.Wrapf(err, "config: log level %q", c.LogLevel)
	}
	if c.LogFormat == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
