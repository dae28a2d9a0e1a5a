package systems

import (
	"github.com/automoto/mazecrawl/components"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/hajimehoshi/ebiten/v2"
)

// MovementBindings maps each movement action to the keys that hold it.
var MovementBindings = [kinematics.ActionCount][]ebiten.Key{
	kinematics.ActionForward:     {ebiten.KeyW, ebiten.KeyArrowUp},
	kinematics.ActionBack:        {ebiten.KeyS, ebiten.KeyArrowDown},
	kinematics.ActionStrafeLeft:  {ebiten.KeyA},
	kinematics.ActionStrafeRight: {ebiten.KeyD},
	kinematics.ActionTurnLeft:    {ebiten.KeyArrowLeft, ebiten.KeyQ},
	kinematics.ActionTurnRight:   {ebiten.KeyArrowRight, ebiten.KeyE},
}

// CommandBindings maps viewer commands to keys.
var CommandBindings = [components.CommandCount][]ebiten.Key{
	components.CommandAnswer1:     {ebiten.Key1, ebiten.KeyNumpad1},
	components.CommandAnswer2:     {ebiten.Key2, ebiten.KeyNumpad2},
	components.CommandAnswer3:     {ebiten.Key3, ebiten.KeyNumpad3},
	components.CommandAnswer4:     {ebiten.Key4, ebiten.KeyNumpad4},
	components.CommandPortal:      {ebiten.KeyP},
	components.CommandToggleMap:   {ebiten.KeyTab},
	components.CommandToggleMouse: {ebiten.KeyM},
	components.CommandFullscreen:  {ebiten.KeyF11},
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
