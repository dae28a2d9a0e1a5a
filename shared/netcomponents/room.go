package netcomponents

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/mazecrawl/shared/maze"
)

// NetRoomData is the room a player occupies. Entry is the wall it came in
// through; the entry door stays usable while the room is locked.
type NetRoomData struct {
	X, Y     int
	Doors    maze.Doors
	Entry    maze.Direction
	HasEntry bool
	Portal   bool
}

var NetRoom = donburi.NewComponentType[NetRoomData]()
