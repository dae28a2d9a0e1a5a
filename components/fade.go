package components

import (
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// FadeData darkens the screen after a room change.
// Alpha runs from 1 (black) back to 0 while Tween is active.
type FadeData struct {
	Tween *gween.Tween
	Alpha float32
}

var Fade = donburi.NewComponentType[FadeData]()
