package systems

import (
	"log"
	"time"

	"github.com/automoto/mazecrawl/components"
	"github.com/automoto/mazecrawl/network"
	"github.com/automoto/mazecrawl/shared/doorlock"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi/ecs"
)

// netInputState is what the networked viewer knows about its room beyond
// the synced components.
type netInputState struct {
	locks         messages.RoomLocks
	timerEnd      time.Time
	cooldownEnd   time.Time
	trapEnd       time.Time
	names         map[esync.NetworkId]string
	lastRoom      maze.Coord
	lastRoomKnown bool
}

// NewNetworkInputSystem returns an ECS system that predicts the local player
// from the sampled input, sends the input to the server every frame, and
// folds the server's room events into the View and HUD messages.
func NewNetworkInputSystem(client *network.Client, pred *network.Predictor) func(*ecs.ECS) {
	state := &netInputState{names: make(map[esync.NetworkId]string)}

	return func(e *ecs.ECS) {
		input := getOrCreateInput(e)
		now := time.Now()

		for i, c := range answerCommands {
			if input.Command(c).JustPressed {
				if err := client.SendMessage(messages.QuizAnswer{Index: i}); err != nil {
					log.Printf("[netinput] send error: %v", err)
				}
				break
			}
		}
		if input.Command(components.CommandPortal).JustPressed {
			if err := client.SendMessage(messages.UsePortal{}); err != nil {
				log.Printf("[netinput] send error: %v", err)
			}
		}

		// Nothing is predicted or sent before the first server state.
		if pred.Ready() {
			msg := pred.Predict(input.Movement)
			msg.Timestamp = now.UnixMilli()
			if err := client.SendInput(msg); err != nil {
				log.Printf("[netinput] send error: %v", err)
			}
		}

		state.drain(e, client, now)
		state.syncView(e, pred, now)
	}
}

func (s *netInputState) drain(e *ecs.ECS, client *network.Client, now time.Time) {
	if l := client.LatestLocks(); l != nil {
		s.locks = *l
		s.timerEnd = now.Add(time.Duration(l.Seconds) * time.Second)
	}

	for _, res := range client.DrainQuizResults() {
		switch {
		case res.Error != "":
			ShowMessage(e, "Could not answer: "+res.Error)
		case res.Correct:
			ShowMessage(e, "Correct! The doors open")
		default:
			ShowMessage(e, "Wrong answer")
		}
		if res.CooldownSeconds > 0 {
			s.cooldownEnd = now.Add(time.Duration(res.CooldownSeconds) * time.Second)
		}
	}

	for _, r := range client.DrainRejections() {
		ShowMessage(e, moveErrorText(&provider.MoveError{Code: provider.Code(r.Code), Message: r.Message}))
	}

	for _, t := range client.DrainTraps() {
		ShowMessage(e, t.Message)
		if t.Seconds > 0 {
			s.trapEnd = now.Add(time.Duration(t.Seconds) * time.Second)
		}
	}

	for _, j := range client.DrainJoinedEvents() {
		s.names[j.NetworkID] = j.Name
		ShowMessage(e, j.Name+" entered the room")
	}
	for _, l := range client.DrainLeftEvents() {
		name := s.names[l.NetworkID]
		if name == "" {
			name = "Someone"
		}
		ShowMessage(e, name+" left the room")
	}

	if p := client.LatestPresence(); p != nil {
		presence := getOrCreatePresence(e)
		presence.RoomX, presence.RoomY = p.RoomX, p.RoomY
		presence.Players = p.Players
		for _, pl := range p.Players {
			s.names[pl.NetworkID] = pl.Name
		}
	}
}

// syncView copies the predicted state into the View singleton. Lock details
// come from the last RoomLocks message for the current room.
func (s *netInputState) syncView(e *ecs.ECS, pred *network.Predictor, now time.Time) {
	if !pred.Ready() {
		return
	}
	st := pred.State()
	view := getOrCreateView(e)

	view.Room = st.Room()
	view.Doors = st.Doors
	view.Pose = st.Pose
	view.Heading = kinematics.Heading(st.Pose.Yaw)
	view.Locked = pred.Locked()
	for _, d := range maze.Directions {
		entry := st.HasEntry && d == st.Entry
		view.Held[d] = view.Locked && st.Doors.Has(d) && !entry
	}

	view.TimeLeft, view.Quiz, view.Cooldown = 0, nil, 0
	if view.Locked && s.locks.RoomX == st.RoomX && s.locks.RoomY == st.RoomY {
		if d := s.timerEnd.Sub(now); d > 0 {
			view.TimeLeft = d
		}
		if q := s.locks.Quiz; q != nil {
			view.Quiz = &doorlock.Quiz{ID: q.ID, Question: q.Question, Options: q.Options}
		}
		if d := s.cooldownEnd.Sub(now); d > 0 {
			view.Cooldown = d
		}
	}
	view.Portal = pred.Portal()
	view.Traps = pred.Traps()
	view.TrapLeft = 0
	if d := s.trapEnd.Sub(now); d > 0 && view.Traps.Active() {
		view.TrapLeft = d
	}
	view.Ready = true

	if !s.lastRoomKnown || s.lastRoom != view.Room {
		if s.lastRoomKnown {
			StartFade(e)
		}
		s.lastRoom, s.lastRoomKnown = view.Room, true
		getOrCreateMinimap(e).Visit(view.Room, view.Doors, view.Portal)
	}
}
