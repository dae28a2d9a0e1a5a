package scenes

import (
	"image/color"

	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// DisconnectedScene tells the player the server went away. Any of Enter,
// Escape or Space quits.
type DisconnectedScene struct {
	sceneChanger SceneChanger
	reason       string
	quit         bool
}

func NewDisconnectedScene(sc SceneChanger, reason string) *DisconnectedScene {
	return &DisconnectedScene{sceneChanger: sc, reason: reason}
}

func (ds *DisconnectedScene) Update() {
	for _, k := range []ebiten.Key{ebiten.KeyEnter, ebiten.KeyEscape, ebiten.KeySpace} {
		if inpututil.IsKeyJustPressed(k) {
			ds.quit = true
		}
	}
}

// Quit reports whether the player asked to leave.
func (ds *DisconnectedScene) Quit() bool {
	return ds.quit
}

func (ds *DisconnectedScene) Draw(screen *ebiten.Image) {
	// Always clear screen to prevent white flashes from OS window background
	screen.Fill(color.Black)

	b := screen.Bounds()
	title := fonts.Title.Get()
	body := fonts.HUD.Get()

	centered(screen, "Disconnected", title, b.Dy()/2-40, cfg.LockedDoor)
	centered(screen, ds.reason, body, b.Dy()/2, cfg.White)
	centered(screen, "Press Enter to quit", body, b.Dy()/2+40, cfg.Wall)
}

func centered(screen *ebiten.Image, s string, face font.Face, y int, c color.Color) {
	w := font.MeasureString(face, s).Ceil()
	text.Draw(screen, s, face, (screen.Bounds().Dx()-w)/2, y, c)
}
