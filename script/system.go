package script

import (
	"context"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/cyan/ecs"
)

// DefaultTimeout bounds a single run of a scripted system.
const DefaultTimeout = 100 * time.Millisecond

// System runs a tengo script once per tick. The script sees the elapsed
// ticks as the global dt.
type System struct {
	name     string
	bridge   *Bridge
	compiled *tengo.Compiled
	timeout  time.Duration
	log      zerolog.Logger
}

// NewSystem compiles src against b.
func NewSystem(b *Bridge, name string, src []byte) (*System, error) {
	s := &System{
		name:    name,
		bridge:  b,
		timeout: DefaultTimeout,
		log:     b.log.With().Str("script", name).Logger(),
	}
	if err := s.Reload(src); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *System) Name() string {
	return s.name
}

// SetTimeout changes the per-run deadline; zero disables it.
func (s *System) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Reload swaps in a new program. The old one stays active if src fails to
// compile.
func (s *System) Reload(src []byte) error {
	compiled, err := compile(s.bridge, src)
	if err != nil {
		return eris.Wrapf(err, "script: compile %s", s.name)
	}
	s.compiled = compiled
	return nil
}

// Update runs the script. w must be the bridge's world; runtime errors are
// logged, not returned.
func (s *System) Update(w *ecs.World, dt float64) {
	if w != s.bridge.world {
		s.log.Warn().Msg("scripted system updated with a foreign world")
		return
	}
	if err := s.run(dt); err != nil {
		s.log.Error().Err(err).Msg("script update failed")
	}
}

func (s *System) run(dt float64) error {
	if err := s.compiled.Set("dt", dt); err != nil {
		return err
	}
	if s.timeout <= 0 {
		return s.compiled.Run()
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.compiled.RunContext(ctx)
}

func compile(b *Bridge, src []byte) (*tengo.Compiled, error) {
	sc := tengo.NewScript(src)
	sc.SetImports(b.Imports())
	if err := sc.Add("dt", 0.0); err != nil {
		return nil, err
	}
	return sc.Compile()
}

// Exec compiles and runs src once against b.
func Exec(ctx context.Context, b *Bridge, src []byte) error {
	compiled, err := compile(b, src)
	if err != nil {
		return eris.Wrap(err, "script: compile")
	}
	if err := compiled.RunContext(ctx); err != nil {
		return eris.Wrap(err, "script: run")
	}
	return nil
}
