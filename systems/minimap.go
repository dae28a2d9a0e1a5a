package systems

import (
	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

const minimapMargin = 16

// UpdateMinimap toggles the map on Tab.
func UpdateMinimap(ecs *ecs.ECS) {
	input := getOrCreateInput(ecs)
	if input.Command(components.CommandToggleMap).JustPressed {
		m := getOrCreateMinimap(ecs)
		m.Shown = !m.Shown
		settings.ShowMinimap = m.Shown
		SaveCurrentSettings()
	}
}

// DrawMinimap renders the fog-of-war map to the right of the room view.
// Rooms never visited stay dark; visited rooms show their doors and portals.
func DrawMinimap(ecs *ecs.ECS, screen *ebiten.Image) {
	m := getOrCreateMinimap(ecs)
	view := getOrCreateView(ecs)
	if !m.Shown || !view.Ready || m.Width == 0 || m.Height == 0 {
		return
	}

	t := newRoomTransform(screen)
	left := t.cx + t.half + 2*minimapMargin
	b := screen.Bounds()
	availW := float32(b.Dx()) - left - minimapMargin
	availH := float32(b.Dy())/2 - 2*minimapMargin
	cell := min(float32(cfg.Viewer.MinimapCell), availW/float32(m.Width), availH/float32(m.Height))
	if cell < 3 {
		return
	}
	top := float32(minimapMargin)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			px, py := left+float32(x)*cell, top+float32(y)*cell
			doors, seen := m.Visited[maze.Coord{X: x, Y: y}]
			if !seen {
				vector.DrawFilledRect(screen, px+1, py+1, cell-2, cell-2, cfg.Unvisited, false)
				continue
			}
			drawMinimapRoom(screen, px, py, cell, doors)
			if m.Portals[maze.Coord{X: x, Y: y}] {
				vector.StrokeCircle(screen, px+cell/2, py+cell/2, max(cell/4, 1.5), 1, cfg.Portal, true)
			}
		}
	}

	// Current room outline and player marker.
	px, py := left+float32(view.Room.X)*cell, top+float32(view.Room.Y)*cell
	vector.StrokeRect(screen, px, py, cell, cell, 1, cfg.PlayerDot, false)
	u, v := kinematics.Normalized(cfg.Player, view.Pose)
	vector.DrawFilledCircle(screen, px+float32(u)*cell, py+float32(v)*cell, max(cell/6, 1.5), cfg.PlayerDot, true)
}

func drawMinimapRoom(screen *ebiten.Image, px, py, cell float32, doors maze.Doors) {
	inset := cell / 6
	vector.DrawFilledRect(screen, px+inset, py+inset, cell-2*inset, cell-2*inset, cfg.Floor, false)

	w := max(cell/4, 1)
	mid := cell / 2
	if doors.North {
		vector.DrawFilledRect(screen, px+mid-w/2, py, w, inset, cfg.Door, false)
	}
	if doors.South {
		vector.DrawFilledRect(screen, px+mid-w/2, py+cell-inset, w, inset, cfg.Door, false)
	}
	if doors.West {
		vector.DrawFilledRect(screen, px, py+mid-w/2, inset, w, cfg.Door, false)
	}
	if doors.East {
		vector.DrawFilledRect(screen, px+cell-inset, py+mid-w/2, inset, w, cfg.Door, false)
	}
}
