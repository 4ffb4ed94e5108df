// Command dvd opens a window running a scene, by default the bouncing logo.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/cyan/config"
	"github.com/milk9111/cyan/internal/boot"
	"github.com/milk9111/cyan/render"
)

func main() {
	configPath := flag.String("config", "", "yaml config file (CYAN_* env vars override it)")
	scene := flag.String("scene", "", "scene file in prefabs/scenes, overrides the config")
	stats := flag.Bool("stats", false, "show the stats overlay (toggle with F1)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dvd: %v\n", err)
		os.Exit(1)
	}
	if *scene != "" {
		cfg.Scene = *scene
	}

	app, err := boot.New(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dvd: %v\n", err)
		os.Exit(1)
	}

	game := render.NewGame(app.Engine, cfg.WindowWidth, cfg.WindowHeight)
	game.ShowStats = *stats

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle(cfg.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		app.Log.Fatal().Err(err).Msg("game exited")
	}
}
