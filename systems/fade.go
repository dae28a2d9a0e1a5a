package systems

import (
	"image/color"

	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi/ecs"
)

// StartFade blacks the screen out and fades back in over the configured time.
func StartFade(ecs *ecs.ECS) {
	fade := getOrCreateFade(ecs)
	fade.Tween = gween.New(1, 0, cfg.Viewer.FadeTime, ease.OutQuad)
	fade.Alpha = 1
}

// UpdateFade advances the fade tween by one frame.
func UpdateFade(ecs *ecs.ECS) {
	fade := getOrCreateFade(ecs)
	if fade.Tween == nil {
		return
	}
	alpha, done := fade.Tween.Update(float32(1.0 / float64(ebiten.TPS())))
	fade.Alpha = alpha
	if done {
		fade.Tween = nil
		fade.Alpha = 0
	}
}

func DrawFade(ecs *ecs.ECS, screen *ebiten.Image) {
	fade := getOrCreateFade(ecs)
	if fade.Alpha <= 0 {
		return
	}
	c := cfg.FadeColor
	a := uint8(float32(255) * min(fade.Alpha, 1))
	overlay := color.RGBA{
		R: uint8(uint16(c.R) * uint16(a) / 255),
		G: uint8(uint16(c.G) * uint16(a) / 255),
		B: uint8(uint16(c.B) * uint16(a) / 255),
		A: a,
	}
	b := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), overlay, false)
}

func getOrCreateFade(ecs *ecs.ECS) *components.FadeData {
	entry, ok := components.Fade.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.Fade))
	}
	return components.Fade.Get(entry)
}
