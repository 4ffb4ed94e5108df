// Command cyan runs a scene headless, optionally hot reloading its prefabs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/milk9111/cyan/config"
	"github.com/milk9111/cyan/internal/boot"
)

func main() {
	configPath := flag.String("config", "", "yaml config file (CYAN_* env vars override it)")
	scene := flag.String("scene", "", "scene file in prefabs/scenes, overrides the config")
	ticks := flag.Int("ticks", 0, "run this many ticks as fast as possible and exit")
	watch := flag.Bool("watch", false, "hot reload scenes and scripts from the prefab dir")
	flag.Parse()

	if err := run(*configPath, *scene, *ticks, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "cyan: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, scene string, ticks int, watch bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if scene != "" {
		cfg.Scene = scene
	}
	cfg.Watch = cfg.Watch || watch

	app, err := boot.New(cfg, os.Stderr)
	if err != nil {
		return err
	}

	if ticks > 0 {
		for range ticks {
			app.Engine.Tick(cfg.MsPerTick)
		}
		report(app)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		if err := app.Watch(ctx); err != nil {
			return err
		}
	}
	interval := time.Duration(cfg.MsPerTick * float64(time.Millisecond))
	if err := app.Engine.Run(ctx, interval); err != nil {
		return err
	}
	report(app)
	return nil
}

func report(app *boot.App) {
	scene := app.Engine.Active()
	w := scene.World()
	ev := app.Log.Info().
		Str("scene", scene.Name()).
		Float64("ticks", app.Engine.Timer().Elapsed()).
		Int("entities", w.Len()).
		Int("orphans_collected", w.Collect())
	for name, n := range w.Types().Counts() {
		ev = ev.Int(name, n)
	}
	ev.Msg("done")
}
