package core

import (
	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/player"
	"github.com/automoto/mazecrawl/shared/provider"
	"github.com/leap-fish/necs/router"
	"github.com/yohamta/donburi"
)

// crawler is the server-side state of one player. It is not a donburi
// component: it exists only on the server and is never synced.
type crawler struct {
	entity donburi.Entity
	client *router.NetworkClient // nil for bots
	name   string
	joined bool

	rooms *provider.Local
	ctrl  *player.Controller
	bot   *wanderer

	// Latest input snapshot (written by onPlayerInput, read by the tick).
	// Look deltas accumulate until a tick consumes them.
	held         [kinematics.ActionCount]bool
	lookDX       float64
	lookDY       float64
	lastInputSeq uint32
}

// accept stores a client input. Stale sequences are dropped; an input with
// no sequence is applied but never moves the acknowledged sequence.
func (c *crawler) accept(input messages.PlayerInput) bool {
	if input.Sequence != 0 && input.Sequence <= c.lastInputSeq {
		return false
	}
	in := input.Input()
	c.held = in.Held
	c.lookDX += in.LookDX
	c.lookDY += in.LookDY
	if input.Sequence != 0 {
		c.lastInputSeq = input.Sequence
	}
	return true
}

// nextInput returns the input for one sub-step and consumes pending look deltas.
func (c *crawler) nextInput() kinematics.Input {
	in := kinematics.Input{Held: c.held, LookDX: c.lookDX, LookDY: c.lookDY}
	c.lookDX, c.lookDY = 0, 0
	return in
}

func (c *crawler) isBot() bool {
	return c.bot != nil
}
