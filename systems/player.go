package systems

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/automoto/mazecrawl/components"
	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/player"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/automoto/mazecrawl/tags"
	"github.com/yohamta/donburi/ecs"
)

const (
	// requestTimeout bounds provider calls made from one frame.
	requestTimeout = 3 * time.Second
	refusedPause   = 500 * time.Millisecond
)

// UpdatePlayer runs one controller tick for the local player and copies the
// result into the View and Minimap singletons.
func UpdatePlayer(ecs *ecs.ECS) {
	entry, ok := tags.Player.First(ecs.World)
	if !ok {
		return
	}
	pd := components.Player.Get(entry)
	if pd.Controller == nil {
		return
	}
	ctrl := pd.Controller
	input := getOrCreateInput(ecs)
	now := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	answerQuiz(ecs, ctx, ctrl, input)

	if input.Command(components.CommandPortal).JustPressed {
		usePortal(ecs, ctx, pd)
	}

	move := input.Movement
	if now.Before(pd.PausedUntil) {
		move = kinematics.Input{LookDX: move.LookDX, LookDY: move.LookDY}
	}

	ev, err := ctrl.Tick(ctx, move)
	pd.LastEvent = ev
	if err != nil {
		pd.PausedUntil = now.Add(refusedPause)
		ShowMessage(ecs, moveErrorText(err))
		log.Printf("[viewer] move refused: %v", err)
	}
	if ev.RoomChanged {
		StartFade(ecs)
	}
	if ev.Trap != nil {
		ShowMessage(ecs, ev.Trap.Message)
	}
	if ev.Unlocked {
		ShowMessage(ecs, "The doors swing open")
	}

	view := getOrCreateView(ecs)
	first := !view.Ready
	SyncView(view, ctrl, now)
	if first || ev.RoomChanged {
		syncMinimap(ecs, ctrl)
	}
}

// SyncView copies the controller's state and lock overlay into view.
func SyncView(view *components.ViewData, ctrl *player.Controller, now time.Time) {
	st := ctrl.State()
	locks := ctrl.Locks()

	view.Room = st.Room()
	view.Doors = st.Doors
	view.Pose = st.Pose
	view.Heading = ctrl.Heading()
	for _, d := range maze.Directions {
		view.Held[d] = st.Doors.Has(d) && !kinematics.Passable(st, locks, d)
	}
	view.Locked = locks.Locked()
	view.TimeLeft = locks.Remaining(now)
	view.Quiz = locks.Quiz()
	view.Cooldown = locks.Cooldown(now)
	view.Portal = ctrl.Room().HasPortal
	view.Traps = ctrl.Traps()
	view.TrapLeft = ctrl.TrapRemaining()
	view.Ready = true
}

func syncMinimap(ecs *ecs.ECS, ctrl *player.Controller) {
	m := getOrCreateMinimap(ecs)
	for _, r := range ctrl.VisitedRooms() {
		m.Visit(r.Coord(), r.Doors, r.HasPortal)
	}
}

var answerCommands = [...]components.Command{
	components.CommandAnswer1, components.CommandAnswer2,
	components.CommandAnswer3, components.CommandAnswer4,
}

func answerQuiz(ecs *ecs.ECS, ctx context.Context, ctrl *player.Controller, input *components.InputData) {
	idx := -1
	for i, c := range answerCommands {
		if input.Command(c).JustPressed {
			idx = i
			break
		}
	}
	if idx < 0 || ctrl.Locks().Quiz() == nil {
		return
	}

	correct, err := ctrl.AnswerQuiz(ctx, idx)
	switch {
	case errors.Is(err, doorlock.ErrCooldown):
		ShowMessage(ecs, "Wait before answering again")
	case err != nil:
		ShowMessage(ecs, "Could not answer: "+err.Error())
	case correct:
		ShowMessage(ecs, "Correct! The doors open")
	default:
		ShowMessage(ecs, "Wrong answer")
	}
}

func usePortal(ecs *ecs.ECS, ctx context.Context, pd *components.PlayerData) {
	room, err := pd.Controller.UsePortal(ctx)
	if err != nil {
		ShowMessage(ecs, moveErrorText(err))
		log.Printf("[viewer] portal refused: %v", err)
		return
	}
	ShowMessage(ecs, fmt.Sprintf("Teleported to room %s", room.Coord()))
	StartFade(ecs)
	syncMinimap(ecs, pd.Controller)
}

func moveErrorText(err error) string {
	switch provider.CodeOf(err) {
	case provider.CodeLocked:
		return "The door is locked"
	case provider.CodeNoDoor:
		return "There is no door there"
	case provider.CodeOutOfBounds:
		return "That door leads nowhere"
	case provider.CodeNoPortal:
		return "There is no portal here"
	case provider.CodeFrozen:
		return "You are frozen"
	case provider.CodeNetwork:
		return "Network error, try again"
	}
	return fmt.Sprintf("Move failed: %v", err)
}
