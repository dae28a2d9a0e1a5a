package systems

import (
	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
	"golang.org/x/image/font"
)

const messageFrames = 150

// ShowMessage displays txt at the bottom of the screen for a few seconds,
// replacing any message already shown.
func ShowMessage(ecs *ecs.ECS, txt string) {
	state := getOrCreateMessageState(ecs)
	state.Text = txt
	state.DisplayTimer = messageFrames
}

// UpdateMessage counts the active message down.
func UpdateMessage(ecs *ecs.ECS) {
	state := getOrCreateMessageState(ecs)
	if state.DisplayTimer > 0 {
		state.DisplayTimer--
		if state.DisplayTimer == 0 {
			state.Text = ""
		}
	}
}

// DrawMessage renders the active message centered at the bottom of the screen
func DrawMessage(ecs *ecs.ECS, screen *ebiten.Image) {
	state := getOrCreateMessageState(ecs)
	if state.Text == "" {
		return
	}

	face := fonts.HUD.Get()
	width := font.MeasureString(face, state.Text).Ceil()
	height := face.Metrics().Height.Ceil()

	b := screen.Bounds()
	x := (b.Dx() - width) / 2
	y := b.Dy() - 2*height

	vector.DrawFilledRect(screen, float32(x-8), float32(y-height), float32(width+16), float32(height+8), cfg.Panel, false)
	text.Draw(screen, state.Text, face, x, y, cfg.White)
}

func getOrCreateMessageState(ecs *ecs.ECS) *components.MessageStateData {
	entry, ok := components.MessageState.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.MessageState))
	}
	return components.MessageState.Get(entry)
}
