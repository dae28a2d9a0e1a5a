package components

import (
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/yohamta/donburi"
)

// MinimapData is the fog-of-war map: only visited rooms are known.
type MinimapData struct {
	Width, Height int
	Visited       map[maze.Coord]maze.Doors
	Portals       map[maze.Coord]bool
	Shown         bool
}

// Visit records a room, its doors and whether it holds a portal.
func (m *MinimapData) Visit(c maze.Coord, doors maze.Doors, portal bool) {
	if m.Visited == nil {
		m.Visited = make(map[maze.Coord]maze.Doors)
		m.Portals = make(map[maze.Coord]bool)
	}
	m.Visited[c] = doors
	if portal {
		m.Portals[c] = true
	} else {
		delete(m.Portals, c)
	}
	if c.X >= m.Width {
		m.Width = c.X + 1
	}
	if c.Y >= m.Height {
		m.Height = c.Y + 1
	}
}

var Minimap = donburi.NewComponentType[MinimapData]()
