package netcomponents

import (
	"github.com/yohamta/donburi"

	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/trap"
)

type NetPlayerStateData struct {
	Name         string
	Heading      maze.Direction
	Locked       bool   // Current room has doors held shut
	Bot          bool
	LastSequence uint32 // Last input sequence processed by the server
	Traps        trap.Modifiers
	IsLocal      bool   // Client-side only, not synced
}

var NetPlayerState = donburi.NewComponentType[NetPlayerStateData]()
