package messages

import "github.com/automoto/mazecrawl/shared/kinematics"

// PlayerInput is sent from client to server each frame with the player's
// held actions and accumulated look delta.
type PlayerInput struct {
	Sequence  uint32                     // Incrementing ID, echoed in NetPlayerState
	Actions   map[kinematics.Action]bool // Which actions are currently held
	LookDX    float64
	LookDY    float64
	Timestamp int64 // Client timestamp (Unix ms)
}

// NewPlayerInput creates a PlayerInput with initialized map
func NewPlayerInput(seq uint32) PlayerInput {
	return PlayerInput{
		Sequence: seq,
		Actions:  make(map[kinematics.Action]bool),
	}
}

// FromInput packs a tick snapshot for the wire.
func FromInput(seq uint32, in kinematics.Input) PlayerInput {
	msg := NewPlayerInput(seq)
	for a, held := range in.Held {
		if held {
			msg.Actions[kinematics.Action(a)] = true
		}
	}
	msg.LookDX, msg.LookDY = in.LookDX, in.LookDY
	return msg
}

// Input unpacks the message, ignoring unknown actions.
func (p PlayerInput) Input() kinematics.Input {
	in := kinematics.Input{LookDX: p.LookDX, LookDY: p.LookDY}
	for a, held := range p.Actions {
		if held && a >= 0 && a < kinematics.ActionCount {
			in.Held[a] = true
		}
	}
	return in
}
