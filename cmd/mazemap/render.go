package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// Each room takes cellW x cellH characters; walls are shared with neighbors.
const (
	cellW = 4
	cellH = 2
)

type cell struct {
	r     rune
	style tcell.Style
}

var (
	wallStyle        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	startStyle       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lockStyle        = tcell.StyleDefault.Foreground(tcell.ColorRed)
	unreachableStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkRed)
	portalStyle      = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	trapStyle        = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// render lays the maze out as a character grid. Only the north and west wall
// of every room is drawn, plus the outer south and east border; doors are
// symmetric so that covers every wall once. Portal rooms carry a P left of
// the room label and trapped rooms a T right of it.
func render(m *maze.Maze, locks doorlock.StaticSource, traps *trap.Set) [][]cell {
	w, h := m.Width*cellW+1, m.Height*cellH+1
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' ', style: wallStyle}
		}
	}
	set := func(x, y int, r rune, style tcell.Style) {
		grid[y][x] = cell{r: r, style: style}
	}

	reachable := m.Reachable(0, 0)
	for _, room := range m.Rooms() {
		ox, oy := room.X*cellW, room.Y*cellH
		set(ox, oy, '+', wallStyle)
		if !room.Doors.North {
			for i := 1; i < cellW; i++ {
				set(ox+i, oy, '-', wallStyle)
			}
		}
		if !room.Doors.West {
			set(ox, oy+1, '|', wallStyle)
		}

		c := room.Coord()
		switch {
		case c == (maze.Coord{}):
			set(ox+2, oy+1, 'S', startStyle)
		case len(locks[c]) > 0:
			set(ox+2, oy+1, 'L', lockStyle)
		case !reachable[c]:
			for i := 1; i < cellW; i++ {
				set(ox+i, oy+1, '░', unreachableStyle)
			}
		}
		if room.Portal {
			set(ox+1, oy+1, 'P', portalStyle)
		}
		if traps != nil {
			if _, ok := traps.At(c); ok {
				set(ox+3, oy+1, 'T', trapStyle)
			}
		}
	}

	// Outer south and east border.
	for x := 0; x < w; x++ {
		r := '-'
		if x%cellW == 0 {
			r = '+'
		}
		set(x, h-1, r, wallStyle)
	}
	for y := 0; y < h; y++ {
		r := '|'
		if y%cellH == 0 {
			r = '+'
		}
		set(w-1, y, r, wallStyle)
	}
	return grid
}
