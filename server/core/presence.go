package core

import (
	"cmp"
	"slices"

	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// presenceCell is the side of one room in presence-space units.
const presenceCell = 64

const tagPlayer = "player"

// Presence indexes which room every player is in. The resolv space has one
// cell per room; each player is a 1x1 object so it never touches a neighbor cell.
type Presence struct {
	space   *resolv.Space
	objects map[donburi.Entity]*resolv.Object
}

func NewPresence(width, height int) *Presence {
	return &Presence{
		space:   resolv.NewSpace(width*presenceCell, height*presenceCell, presenceCell, presenceCell),
		objects: make(map[donburi.Entity]*resolv.Object),
	}
}

// Place moves e to room at normalized position (u, v). It returns the room e
// was in before and whether the room changed, which is true on first placement.
func (p *Presence) Place(e donburi.Entity, room maze.Coord, u, v float64) (prev maze.Coord, changed bool) {
	x := float64(room.X*presenceCell) + u*(presenceCell-1)
	y := float64(room.Y*presenceCell) + v*(presenceCell-1)

	obj, ok := p.objects[e]
	if !ok {
		obj = resolv.NewObject(x, y, 1, 1, tagPlayer)
		obj.Data = e
		p.space.Add(obj)
		p.objects[e] = obj
		return room, true
	}

	prev = p.roomOf(obj)
	obj.X, obj.Y = x, y
	obj.Update()
	return prev, prev != room
}

// Remove drops e from the index and returns the room it was in.
func (p *Presence) Remove(e donburi.Entity) (maze.Coord, bool) {
	obj, ok := p.objects[e]
	if !ok {
		return maze.Coord{}, false
	}
	room := p.roomOf(obj)
	p.space.Remove(obj)
	delete(p.objects, e)
	return room, true
}

// Room returns the room e is in.
func (p *Presence) Room(e donburi.Entity) (maze.Coord, bool) {
	obj, ok := p.objects[e]
	if !ok {
		return maze.Coord{}, false
	}
	return p.roomOf(obj), true
}

// Occupants lists the players in a room in a stable order.
func (p *Presence) Occupants(room maze.Coord) []donburi.Entity {
	cell := p.space.Cell(room.X, room.Y)
	if cell == nil {
		return nil
	}
	var out []donburi.Entity
	for _, obj := range cell.Objects {
		if !obj.HasTags(tagPlayer) {
			continue
		}
		if e, ok := obj.Data.(donburi.Entity); ok {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b donburi.Entity) int {
		return cmp.Compare(a, b)
	})
	return out
}

func (p *Presence) Len() int {
	return len(p.objects)
}

func (p *Presence) roomOf(obj *resolv.Object) maze.Coord {
	cx, cy := p.space.WorldToSpace(obj.X, obj.Y)
	return maze.Coord{X: cx, Y: cy}
}
