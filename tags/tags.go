package tags

import "github.com/yohamta/donburi"

var (
	// Player marks the entity driven by this viewer.
	Player = donburi.NewTag().SetName("Player")
)
