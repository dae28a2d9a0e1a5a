package components

import (
	"time"

	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
	"github.com/yohamta/donburi"
)

// ViewData is what the renderers draw: the local player's room and pose,
// filled in each frame by whichever scene drives the player.
type ViewData struct {
	Room    maze.Coord
	Doors   maze.Doors
	Pose    kinematics.Pose
	Heading maze.Direction

	// Held marks doors currently held shut by a lock.
	Held     [4]bool
	Locked   bool
	TimeLeft time.Duration
	Quiz     *doorlock.Quiz
	Cooldown time.Duration

	// Portal is set when the room holds a portal.
	Portal   bool
	Traps    trap.Modifiers
	TrapLeft time.Duration

	// Mode is a short label for the HUD ("local", "remote", "online").
	Mode  string
	Ready bool
}

var View = donburi.NewComponentType[ViewData]()
