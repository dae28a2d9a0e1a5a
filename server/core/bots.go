package core

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/player"
)

// alignedYaw is how close the heading must be to the target before walking.
const alignedYaw = 0.35

// wanderer picks an open door of its room, turns to face it and walks
// through. It produces the same Input a human client would send.
type wanderer struct {
	rng        *rand.Rand
	turnChance float64

	target    maze.Direction
	hasTarget bool
}

func newWanderer(cfg config.BotConfig, rng *rand.Rand) *wanderer {
	return &wanderer{rng: rng, turnChance: cfg.TurnChance}
}

// decide returns the input for the next tick.
func (w *wanderer) decide(ctrl *player.Controller) kinematics.Input {
	st := ctrl.State()
	if !w.hasTarget || w.rng.Float64() < w.turnChance {
		w.pickTarget(st, ctrl.Locks())
	}
	if !w.hasTarget {
		return kinematics.Input{}
	}

	half := ctrl.Config().Half()
	tx, tz := doorPoint(w.target, half)
	dx, dz := tx-st.Pose.X, tz-st.Pose.Z
	// Forward is (-sin yaw, -cos yaw).
	want := math.Atan2(-dx, -dz)
	diff := math.Remainder(want-st.Pose.Yaw, 2*math.Pi)

	var in kinematics.Input
	rot := ctrl.Config().RotationSpeed
	switch {
	case diff > rot:
		in = in.Press(kinematics.ActionTurnLeft)
	case diff < -rot:
		in = in.Press(kinematics.ActionTurnRight)
	}
	if math.Abs(diff) < alignedYaw {
		in = in.Press(kinematics.ActionForward)
	}
	return in
}

// pickTarget prefers doors other than the one it came in through.
func (w *wanderer) pickTarget(st kinematics.State, gate kinematics.Gate) {
	var open, back []maze.Direction
	for _, d := range maze.Directions {
		if !kinematics.Passable(st, gate, d) {
			continue
		}
		if st.HasEntry && d == st.Entry {
			back = append(back, d)
			continue
		}
		open = append(open, d)
	}
	if len(open) == 0 {
		open = back
	}
	if len(open) == 0 {
		w.hasTarget = false
		return
	}
	w.target = open[w.rng.Intn(len(open))]
	w.hasTarget = true
}

// observe drops the target after a room change or when stuck on a wall.
func (w *wanderer) observe(ev player.Event) {
	if ev.RoomChanged || ev.Blocked || ev.Unlocked {
		w.hasTarget = false
	}
}

// solve guesses at the room's quiz whenever it is allowed to.
func (w *wanderer) solve(ctx context.Context, ctrl *player.Controller) {
	q := ctrl.Locks().Quiz()
	if q == nil || len(q.Options) == 0 || ctrl.Locks().Cooldown(time.Now()) > 0 {
		return
	}
	if _, err := ctrl.AnswerQuiz(ctx, w.rng.Intn(len(q.Options))); err != nil {
		log.Printf("[bot] quiz answer: %v", err)
	}
}

func doorPoint(d maze.Direction, half float64) (x, z float64) {
	switch d {
	case maze.North:
		return 0, -half
	case maze.South:
		return 0, half
	case maze.East:
		return half, 0
	default:
		return -half, 0
	}
}

// AddBots spawns n server-driven players in the start room.
func (s *Server) AddBots(n int, cfg config.BotConfig) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n; i++ {
		c := &crawler{bot: newWanderer(cfg, rng)}
		if err := s.spawn(c, fmt.Sprintf("bot-%d", len(s.bots)+1)); err != nil {
			return fmt.Errorf("spawn bot: %w", err)
		}
		s.bots = append(s.bots, c)
	}
	log.Printf("[server] added %d bots", n)
	return nil
}
