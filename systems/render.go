package systems

import (
	"image/color"
	"math"

	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

const (
	roomMargin = 32
	wallWidth  = 4
)

// roomTransform maps room-local coordinates (X east, Z south, origin at the
// room center) to screen pixels.
type roomTransform struct {
	cx, cy float32
	scale  float32
	half   float32
}

func newRoomTransform(screen *ebiten.Image) roomTransform {
	scale := float32(cfg.Viewer.RoomScale)
	half := float32(cfg.Player.Half()) * scale
	return roomTransform{
		cx:    roomMargin + half,
		cy:    float32(screen.Bounds().Dy()) / 2,
		scale: scale,
		half:  half,
	}
}

func (t roomTransform) point(x, z float64) (float32, float32) {
	return t.cx + float32(x)*t.scale, t.cy + float32(z)*t.scale
}

// DrawRoom renders the current room from above: floor, walls with their door
// gaps, the portal if any, and the local player with a heading tick. A blind
// player sees only itself.
func DrawRoom(ecs *ecs.ECS, screen *ebiten.Image) {
	view := getOrCreateView(ecs)
	if !view.Ready {
		return
	}
	t := newRoomTransform(screen)

	vector.DrawFilledRect(screen, t.cx-t.half, t.cy-t.half, 2*t.half, 2*t.half, cfg.Floor, false)
	for _, d := range maze.Directions {
		drawWall(screen, t, d, view.Doors.Has(d), view.Held[d])
	}
	if view.Portal {
		r := float32(cfg.Player.DoorHalfWidth) * t.scale
		vector.StrokeCircle(screen, t.cx, t.cy, r, 3, cfg.Portal, true)
	}
	if view.Traps.Blind {
		vector.DrawFilledRect(screen, t.cx-t.half-wallWidth, t.cy-t.half-wallWidth, 2*(t.half+wallWidth), 2*(t.half+wallWidth), cfg.Blindfold, false)
	}

	drawCrawler(screen, t, view.Pose.X, view.Pose.Z, view.Pose.Yaw, cfg.PlayerDot)
}

// drawWall draws one wall, leaving a door-sized gap when the wall has a door.
// The gap is marked in the door colour, or the locked colour while held.
func drawWall(screen *ebiten.Image, t roomTransform, d maze.Direction, door, held bool) {
	gap := float32(cfg.Player.DoorHalfWidth) * t.scale
	h := t.half

	// Wall endpoints in screen space, running along the lateral axis.
	var x0, y0, x1, y1 float32
	switch d {
	case maze.North:
		x0, y0, x1, y1 = t.cx-h, t.cy-h, t.cx+h, t.cy-h
	case maze.South:
		x0, y0, x1, y1 = t.cx-h, t.cy+h, t.cx+h, t.cy+h
	case maze.East:
		x0, y0, x1, y1 = t.cx+h, t.cy-h, t.cx+h, t.cy+h
	case maze.West:
		x0, y0, x1, y1 = t.cx-h, t.cy-h, t.cx-h, t.cy+h
	}

	if !door {
		vector.StrokeLine(screen, x0, y0, x1, y1, wallWidth, cfg.Wall, false)
		return
	}

	mx, my := (x0+x1)/2, (y0+y1)/2
	// Unit vector along the wall.
	ux, uy := (x1-x0)/(2*h), (y1-y0)/(2*h)
	vector.StrokeLine(screen, x0, y0, mx-ux*gap, my-uy*gap, wallWidth, cfg.Wall, false)
	vector.StrokeLine(screen, mx+ux*gap, my+uy*gap, x1, y1, wallWidth, cfg.Wall, false)

	c := cfg.Door
	if held {
		c = cfg.LockedDoor
	}
	vector.StrokeLine(screen, mx-ux*gap, my-uy*gap, mx+ux*gap, my+uy*gap, wallWidth/2, c, false)
}

// drawCrawler draws a player disc with a tick in the facing direction.
// Yaw 0 faces north and positive yaw turns left.
func drawCrawler(screen *ebiten.Image, t roomTransform, x, z, yaw float64, c color.Color) {
	px, py := t.point(x, z)
	r := float32(cfg.Player.Radius) * t.scale
	vector.DrawFilledCircle(screen, px, py, r, c, true)

	sin, cos := math.Sincos(yaw)
	fx, fz := -sin, -cos
	vector.StrokeLine(screen, px, py, px+float32(fx)*r*2, py+float32(fz)*r*2, 2, cfg.White, true)
}
