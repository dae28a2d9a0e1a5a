// Package mazedata loads hand-authored maze layouts from Tiled TMX maps.
// It has no dependencies on ebitengine, donburi, or resolv.
//
// Map conventions:
//   - the map's tile grid is the room grid;
//   - tile layer "rooms": each tile's tileset property "doors" lists its
//     doors as letters from "NSEW";
//   - object group "locks": direction, kind ("timer" or "quiz"), seconds,
//     and for quizzes question, options ("|" separated) and correct;
//   - object group "textures": direction and url;
//   - object group "ads": direction, type, url and text, sized by the object;
//   - object group "portals": any object marks its room as a portal room;
//   - object group "traps": kind (a trap kind name) and optional seconds.
//
// Objects belong to the room their top-left corner falls in. The start room
// (0,0) must have a door unless it is the only room.
package mazedata

import (
	"errors"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// ErrClosedStart is returned for a layout whose start room has no door.
var ErrClosedStart = errors.New("start room has no door")

// Layout is one maze plus its lock and trap tables.
type Layout struct {
	Name  string
	Maze  *maze.Maze
	Locks doorlock.StaticSource
	Traps *trap.Set
}

const (
	layerRooms    = "rooms"
	groupLocks    = "locks"
	groupTextures = "textures"
	groupAds      = "ads"
	groupPortals  = "portals"
	groupTraps    = "traps"
)
