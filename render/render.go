// Package render draws ECS worlds with ebiten.
package render

import (
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/cyan/ecs"
	"github.com/milk9111/cyan/ecs/component"
)

// DefaultColor is used for sprites whose colour name is unknown.
var DefaultColor = colornames.White

// Color resolves an SVG colour name, case-insensitively.
func Color(name string) (color.RGBA, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

type drawable struct {
	layer  int
	x, y   float64
	sprite *component.Sprite
}

// DrawWorld fills a rectangle for every entity with a Transform and a
// Sprite, lowest layer first. Sprites are centred on their translation and
// scaled by the transform's scale where it is set.
func DrawWorld(screen *ebiten.Image, w *ecs.World) {
	if screen == nil || w == nil {
		return
	}
	var items []drawable
	for e, tf := range ecs.Each[component.Transform](w, ecs.TypeOf[component.Sprite](w)) {
		sp := scaled(ecs.GetComponent[component.Sprite](w, e).Value, tf.Scale)
		items = append(items, drawable{layer: sp.Layer, x: tf.Translate.X, y: tf.Translate.Y, sprite: sp})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].layer < items[j].layer
	})

	for _, it := range items {
		clr, ok := Color(it.sprite.Color)
		if !ok {
			clr = DefaultColor
		}
		width, height := it.sprite.Width, it.sprite.Height
		vector.FillRect(screen, float32(it.x-width/2), float32(it.y-height/2), float32(width), float32(height), clr, false)
	}
}

// scaled applies the non-zero axes of scale to a copy of sp.
func scaled(sp *component.Sprite, scale component.Vec3) *component.Sprite {
	if scale.X == 0 && scale.Y == 0 {
		return sp
	}
	out := *sp
	if scale.X != 0 {
		out.Width *= scale.X
	}
	if scale.Y != 0 {
		out.Height *= scale.Y
	}
	return &out
}
