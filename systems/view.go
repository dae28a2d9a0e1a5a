package systems

import (
	"github.com/automoto/mazecrawl/components"
	"github.com/yohamta/donburi/ecs"
)

func getOrCreateView(ecs *ecs.ECS) *components.ViewData {
	entry, ok := components.View.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.View))
	}
	return components.View.Get(entry)
}

func getOrCreateMinimap(ecs *ecs.ECS) *components.MinimapData {
	entry, ok := components.Minimap.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.Minimap))
		components.Minimap.Get(entry).Shown = settings.ShowMinimap
	}
	return components.Minimap.Get(entry)
}

func getOrCreatePresence(ecs *ecs.ECS) *components.PresenceData {
	entry, ok := components.Presence.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.Presence))
	}
	return components.Presence.Get(entry)
}

// SetMode labels the HUD with how the viewer is connected.
func SetMode(ecs *ecs.ECS, mode string) {
	getOrCreateView(ecs).Mode = mode
}

// SetMazeSize sizes the minimap grid.
func SetMazeSize(ecs *ecs.ECS, width, height int) {
	m := getOrCreateMinimap(ecs)
	m.Width, m.Height = max(m.Width, width), max(m.Height, height)
}
