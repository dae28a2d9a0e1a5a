// Package provider decouples the movement controller from where room data
// comes from: an in-process maze or a remote session server.
package provider

import (
	"context"

	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

// RoomData is the wire and in-process view of one room.
type RoomData struct {
	X            int                 `json:"x"`
	Y            int                 `json:"y"`
	Doors        maze.Doors          `json:"doors"`
	WallTextures map[string]string   `json:"wallTextures,omitempty"`
	Ads          map[string]*maze.Ad `json:"ads,omitempty"`
	HasPortal    bool                `json:"has_portal"`
}

func (r RoomData) Coord() maze.Coord {
	return maze.Coord{X: r.X, Y: r.Y}
}

// FromRoom converts a maze room, copying its wall decoration.
func FromRoom(r maze.Room) RoomData {
	rd := RoomData{X: r.X, Y: r.Y, Doors: r.Doors, HasPortal: r.Portal}
	for _, d := range maze.Directions {
		if url := r.WallTexture(d); url != "" {
			if rd.WallTextures == nil {
				rd.WallTextures = make(map[string]string)
			}
			rd.WallTextures[d.String()] = url
		}
		if ad := r.Ad(d); ad != nil {
			if rd.Ads == nil {
				rd.Ads = make(map[string]*maze.Ad)
			}
			rd.Ads[d.String()] = ad
		}
	}
	return rd
}

// MoveResult is returned by a successful MoveToRoom. Room is where the player
// ended up: the room walked into, or the destination of a teleporting Trap.
type MoveResult struct {
	Room RoomData     `json:"room"`
	Trap *trap.Effect `json:"trap,omitempty"`
}

// Size is the maze extent.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RoomProvider supplies room data to a controller. Implementations backed by
// the network may block in the context-taking methods; a failed MoveToRoom
// returns a *MoveError and must not change the provider's current room.
type RoomProvider interface {
	StartPosition(ctx context.Context) (maze.Coord, error)
	CurrentRoom(ctx context.Context) (RoomData, error)
	MoveToRoom(ctx context.Context, d maze.Direction) (MoveResult, error)
	// MazeSize reports false when the extent is unknown to this provider.
	MazeSize() (Size, bool)
	VisitedRooms() []RoomData
}

// PortalUser is implemented by providers that can teleport through the
// portal of the current room. A room without one fails with CodeNoPortal.
type PortalUser interface {
	UsePortal(ctx context.Context) (RoomData, error)
}
