package components

import (
	"time"

	"github.com/automoto/mazecrawl/shared/player"
	"github.com/yohamta/donburi"
)

// PlayerData ties the local player entity to its movement controller.
type PlayerData struct {
	Controller *player.Controller
	LastEvent  player.Event

	// PausedUntil pauses movement after a refused room change.
	PausedUntil time.Time
}

var Player = donburi.NewComponentType[PlayerData]()
