package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/cyan/engine"
)

// Game adapts an engine to ebiten. Each ebiten update advances the engine by
// one frame of wall time. Space toggles pause, F1 the stats overlay and
// Escape quits.
type Game struct {
	engine *engine.Engine
	width  int
	height int

	Background color.Color
	ShowStats  bool

	speed  float64
	frames int
}

func NewGame(e *engine.Engine, width, height int) *Game {
	return &Game{
		engine:     e,
		width:      width,
		height:     height,
		Background: colornames.Black,
		speed:      e.Timer().Speed(),
	}
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.ShowStats = !g.ShowStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}

	g.engine.Tick(1000 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) togglePause() {
	t := g.engine.Timer()
	if t.Speed() == 0 {
		t.SetSpeed(g.speed)
		return
	}
	g.speed = t.Speed()
	t.Pause()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.Background)
	scene := g.engine.Active()
	if scene == nil {
		return
	}
	DrawWorld(screen, scene.World())
	vector.StrokeRect(screen, 0, 0, float32(g.width), float32(g.height), 1, colornames.Dimgray, false)

	if g.ShowStats {
		w := scene.World()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("scene: %s\nentities: %d\nticks: %.0f\nFPS: %.2f",
			scene.Name(), w.Len(), g.engine.Timer().Elapsed(), ebiten.ActualFPS()))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
