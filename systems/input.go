package systems

import (
	"github.com/automoto/mazecrawl/components"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi/ecs"
)

// UpdateInput samples keyboard and mouse once per frame into the Input
// singleton. Must run BEFORE UpdatePlayer in the system order.
func UpdateInput(ecs *ecs.ECS) {
	input := getOrCreateInput(ecs)

	// Swap buffers: current becomes previous, then zero out current
	input.Previous = input.Current
	input.Current = [components.CommandCount]bool{}
	for c, keys := range CommandBindings {
		input.Current[c] = anyKeyPressed(keys)
	}

	var move kinematics.Input
	for a, keys := range MovementBindings {
		move.Held[a] = anyKeyPressed(keys)
	}

	if input.Command(components.CommandToggleMouse).JustPressed {
		setMouseLook(input, !input.MouseLook)
	}
	if input.Command(components.CommandFullscreen).JustPressed {
		settings.Fullscreen = !ebiten.IsFullscreen()
		ebiten.SetFullscreen(settings.Fullscreen)
		SaveCurrentSettings()
	}
	if input.MouseLook {
		move.LookDX, move.LookDY = input.Look(ebiten.CursorPosition())
	}
	input.Movement = move
}

func setMouseLook(input *components.InputData, on bool) {
	input.MouseLook = on
	input.ForgetCursor()
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	settings.MouseLook = on
	SaveCurrentSettings()
}

func getOrCreateInput(ecs *ecs.ECS) *components.InputData {
	entry, ok := components.Input.First(ecs.World)
	if !ok {
		entry = ecs.World.Entry(ecs.World.Create(components.Input))
		// Zero-value InputData is correct (all bools false)
		input := components.Input.Get(entry)
		if settings.MouseLook {
			setMouseLook(input, true)
		}
	}
	return components.Input.Get(entry)
}
