package components

import (
	"testing"

	"github.com/automoto/mazecrawl/shared/maze"
)

func TestMinimap_Visit(t *testing.T) {
	var m MinimapData
	m.Visit(maze.Coord{X: 0, Y: 0}, maze.Doors{East: true}, false)
	m.Visit(maze.Coord{X: 2, Y: 1}, maze.Doors{West: true}, true)

	if m.Width != 3 || m.Height != 2 {
		t.Fatalf("expected 3x2 map, got %dx%d", m.Width, m.Height)
	}
	if !m.Portals[maze.Coord{X: 2, Y: 1}] || m.Portals[maze.Coord{}] {
		t.Fatalf("unexpected portals %v", m.Portals)
	}

	// A later visit reports the room's current portal state.
	m.Visit(maze.Coord{X: 2, Y: 1}, maze.Doors{West: true}, false)
	if len(m.Portals) != 0 {
		t.Fatalf("portal not cleared: %v", m.Portals)
	}
	if !m.Visited[maze.Coord{X: 2, Y: 1}].West {
		t.Fatal("doors not recorded")
	}
}
