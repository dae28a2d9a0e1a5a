package systems

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/fonts"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/yohamta/donburi/ecs"
)

const hudMargin = 16

const controlsHelp = "WASD move  Q/E turn  M mouse  Tab map  P portal  1-4 answer"

// DrawHUD lists the room, heading, doors and lock state in the right-hand
// column below the minimap.
func DrawHUD(ecs *ecs.ECS, screen *ebiten.Image) {
	view := getOrCreateView(ecs)
	face := fonts.HUD.Get()
	lineH := face.Metrics().Height.Ceil() + 4

	t := newRoomTransform(screen)
	x := int(t.cx+t.half) + 2*hudMargin
	y := screen.Bounds().Dy()/2 + hudMargin

	line := func(s string, c color.Color) {
		text.Draw(screen, s, face, x, y, c)
		y += lineH
	}

	if !view.Ready {
		line("Connecting...", cfg.White)
		return
	}

	line(fmt.Sprintf("%s  [%s]", cfg.Viewer.AppName, view.Mode), cfg.White)
	line(fmt.Sprintf("Room %s", view.Room), cfg.White)
	line(fmt.Sprintf("Facing %s (%.0f°)", view.Heading, kinematics.HeadingDegrees(view.Pose.Yaw)), cfg.White)
	line("Doors: "+doorList(view.Doors), cfg.White)

	if view.Portal {
		line("Portal here (P)", cfg.Portal)
	}
	for _, s := range trapLines(view) {
		line(s, cfg.Warning)
	}
	for _, s := range lockLines(view) {
		line(s, cfg.Warning)
	}

	if p, ok := components.Presence.First(ecs.World); ok {
		if others := components.Presence.Get(p).Players; len(others) > 1 {
			line(fmt.Sprintf("%d players in this room", len(others)), cfg.OtherDot)
		}
	}

	small := fonts.HUDSmall.Get()
	text.Draw(screen, controlsHelp, small, hudMargin, screen.Bounds().Dy()-hudMargin/2, cfg.Wall)
}

func doorList(d maze.Doors) string {
	var names []string
	for _, dir := range maze.Directions {
		if d.Has(dir) {
			names = append(names, dir.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, " ")
}

// lockLines describes the lock state of the current room, or nothing when
// every door is free.
func lockLines(view *components.ViewData) []string {
	if !view.Locked {
		return nil
	}
	var out []string
	if view.TimeLeft > 0 {
		out = append(out, fmt.Sprintf("Doors unlock in %ds", seconds(view.TimeLeft)))
	}
	if q := view.Quiz; q != nil {
		out = append(out, q.Question)
		for i, opt := range q.Options {
			out = append(out, fmt.Sprintf("  %d) %s", i+1, opt))
		}
		if view.Cooldown > 0 {
			out = append(out, fmt.Sprintf("Try again in %ds", seconds(view.Cooldown)))
		}
	}
	if len(out) == 0 {
		out = append(out, "Doors are locked")
	}
	return out
}

// trapLines lists the trap effects still holding the player.
func trapLines(view *components.ViewData) []string {
	labels := view.Traps.Labels()
	if len(labels) == 0 {
		return nil
	}
	s := "Trapped: " + strings.Join(labels, ", ")
	if view.TrapLeft > 0 {
		s += fmt.Sprintf(" (%ds)", seconds(view.TrapLeft))
	}
	return []string{s}
}

func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
