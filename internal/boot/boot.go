// Package boot wires configuration, logging, prefabs and the engine together
// for the cyan executables.
package boot

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/milk9111/cyan/config"
	"github.com/milk9111/cyan/engine"
	"github.com/milk9111/cyan/prefabs"
)

type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Engine  *engine.Engine
	Source  prefabs.Source
	Catalog *prefabs.Catalog

	loaded  *prefabs.Loaded
	applied map[string]time.Time
}

// New builds the engine and loads cfg.Scene into it. Logs go to out.
func New(cfg config.Config, out io.Writer) (*App, error) {
	log, err := cfg.Logger(out)
	if err != nil {
		return nil, err
	}

	src := prefabs.Embedded(cfg.PrefabDir)
	spec, err := loadScene(src, cfg.Scene)
	if err != nil {
		return nil, err
	}

	timer := engine.NewTimer(cfg.MsPerTick)
	timer.SetSpeed(cfg.Speed)

	a := &App{
		Config:  cfg,
		Log:     log,
		Engine:  engine.New(engine.WithLogger(log), engine.WithScene(spec.Name), engine.WithTimer(timer)),
		Source:  src,
		Catalog: prefabs.DefaultCatalog(),
		applied: make(map[string]time.Time),
	}
	a.loaded, err = a.Catalog.Build(a.Engine.Active(), spec, src)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Loaded returns the currently active scene build. Only call it from the
// tick goroutine.
func (a *App) Loaded() *prefabs.Loaded {
	return a.loaded
}

// Watch hot reloads edited scenes and scripts until ctx is done. Files are
// read on the watcher goroutine and applied on the tick goroutine.
func (a *App) Watch(ctx context.Context) error {
	w, err := prefabs.NewWatcher(a.Source)
	if err != nil {
		return err
	}
	a.Log.Info().Str("dir", a.Source.Dir).Msg("watching prefabs")

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.Log.Warn().Err(err).Msg("prefab watcher")
			case change, ok := <-w.Changes:
				if !ok {
					return
				}
				a.reload(ctx, change)
			}
		}
	}()
	return nil
}

// loadScene reads a scene file. A scene without a name is named after its
// file.
func loadScene(src prefabs.Source, file string) (prefabs.SceneSpec, error) {
	spec, err := prefabs.LoadScene(src, file)
	if err != nil {
		return spec, err
	}
	if spec.Name == "" {
		spec.Name = filepath.Base(filepath.FromSlash(file))
	}
	return spec, nil
}

// reload runs on the watcher goroutine. Files whose modification time has not
// moved since they were last applied are skipped.
func (a *App) reload(ctx context.Context, change prefabs.Change) {
	log := a.Log.With().Str("kind", change.Kind).Str("file", change.Name).Logger()
	key := change.Kind + "/" + change.Name
	mod, hasMod := a.Source.ModTime(change.Kind, change.Name)
	if last, ok := a.applied[key]; ok && hasMod && last.Equal(mod) {
		log.Debug().Msg("file unchanged since last reload")
		return
	}

	var task func()
	switch change.Kind {
	case prefabs.KindScript:
		data, err := a.Source.ReadScript(change.Name)
		if err != nil {
			log.Warn().Err(err).Msg("reload failed")
			return
		}
		task = func() {
			if _, err := a.loaded.ReloadScript(change.Name, data); err != nil {
				log.Warn().Err(err).Msg("reload failed")
			}
		}
	case prefabs.KindScene:
		spec, err := loadScene(a.Source, change.Name)
		if err != nil {
			log.Warn().Err(err).Msg("reload failed")
			return
		}
		task = func() {
			if err := a.ReplaceScene(spec); err != nil {
				log.Warn().Err(err).Msg("reload failed")
			}
		}
	default:
		return
	}

	if err := a.Engine.Post(ctx, task); err != nil {
		log.Debug().Err(err).Msg("reload dropped")
		return
	}
	if hasMod {
		a.applied[key] = mod
	}
}

// ReplaceScene rebuilds spec into a fresh scene and swaps it in if it is the
// active one. Edits to other scenes are ignored.
func (a *App) ReplaceScene(spec prefabs.SceneSpec) error {
	active := a.Engine.Active()
	if spec.Name != active.Name() {
		a.Log.Debug().Str("scene", spec.Name).Msg("ignoring edit to inactive scene")
		return nil
	}
	scene := engine.NewScene(spec.Name, a.Log)
	loaded, err := a.Catalog.Build(scene, spec, a.Source)
	if err != nil {
		return eris.Wrapf(err, "boot: rebuild scene %q", spec.Name)
	}
	a.Engine.ReplaceScene(scene)
	a.loaded = loaded
	return nil
}
