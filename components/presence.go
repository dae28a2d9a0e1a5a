package components

import (
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/yohamta/donburi"
)

// PresenceData lists who else is in the local player's room.
type PresenceData struct {
	RoomX, RoomY int
	Players      []messages.PresenceEntry
}

var Presence = donburi.NewComponentType[PresenceData]()
