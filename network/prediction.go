package network

import (
	"math"

	"github.com/automoto/mazecrawl/shared/kinematics"
	"github.com/automoto/mazecrawl/shared/maze"
	"github.com/automoto/mazecrawl/shared/messages"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/automoto/mazecrawl/shared/trap"
)

const (
	predictionBufferSize = 64

	// reconcileThreshold is the position error, in room units, above which
	// the predicted pose is replaced by the server's.
	reconcileThreshold = 0.05
)

// InputRecord stores an input alongside the predicted state after applying it.
type InputRecord struct {
	Input messages.PlayerInput
	Room  maze.Coord
	Pose  kinematics.Pose
}

// PredictionBuffer is a ring buffer that stores recent inputs and their
// predicted outcomes for server reconciliation.
type PredictionBuffer struct {
	history [predictionBufferSize]InputRecord
	nextSeq uint32
}

// Store saves an input and the resulting predicted state.
func (pb *PredictionBuffer) Store(input messages.PlayerInput, s kinematics.State) {
	idx := input.Sequence % predictionBufferSize
	pb.history[idx] = InputRecord{
		Input: input,
		Room:  s.Room(),
		Pose:  s.Pose,
	}
	pb.nextSeq = input.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (pb *PredictionBuffer) Get(seq uint32) (InputRecord, bool) {
	idx := seq % predictionBufferSize
	record := pb.history[idx]
	if record.Input.Sequence != seq || record.Input.Actions == nil {
		return InputRecord{}, false
	}
	return record, true
}

// NextSeq returns the next expected sequence number.
func (pb *PredictionBuffer) NextSeq() uint32 {
	return pb.nextSeq
}

// GetUnacknowledged returns all stored inputs with sequence numbers greater
// than lastAcked and less than nextSeq (i.e. inputs the server hasn't
// confirmed yet).
func (pb *PredictionBuffer) GetUnacknowledged(lastAcked uint32) []InputRecord {
	var results []InputRecord
	for seq := lastAcked + 1; seq < pb.nextSeq; seq++ {
		if record, ok := pb.Get(seq); ok {
			results = append(results, record)
		}
	}
	return results
}

// PredictionError is the distance between the predicted and the server
// position for a sequence. A different room counts as an infinite error.
func (pb *PredictionBuffer) PredictionError(seq uint32, room maze.Coord, serverX, serverZ float64) float64 {
	record, ok := pb.Get(seq)
	if !ok {
		return 0
	}
	if record.Room != room {
		return math.Inf(1)
	}
	dx := record.Pose.X - serverX
	dz := record.Pose.Z - serverZ
	return math.Sqrt(dx*dx + dz*dz)
}

// lockGate holds every door but the entry door shut while the room is locked.
type lockGate bool

func (g lockGate) Permits(maze.Direction) bool { return !bool(g) }

// Predictor runs the movement model ahead of the server for the local
// player. Crossings are left to the server: the predicted pose waits at the
// threshold until the server reports the new room.
type Predictor struct {
	cfg    kinematics.Config
	buf    PredictionBuffer
	state  kinematics.State
	locked bool
	portal bool
	traps  trap.Modifiers
	ready  bool
}

func NewPredictor(cfg kinematics.Config) *Predictor {
	return &Predictor{cfg: cfg, buf: PredictionBuffer{nextSeq: 1}}
}

// Ready reports whether the first server state has arrived.
func (p *Predictor) Ready() bool {
	return p.ready
}

func (p *Predictor) State() kinematics.State {
	return p.state
}

func (p *Predictor) Locked() bool {
	return p.locked
}

// Portal reports whether the server's room for the player holds a portal.
func (p *Predictor) Portal() bool {
	return p.portal
}

// Traps returns the trap effects last reported by the server.
func (p *Predictor) Traps() trap.Modifiers {
	return p.traps
}

// Predict applies one input locally and returns the message to send. The
// message carries the raw input; trap effects are applied on both ends.
func (p *Predictor) Predict(in kinematics.Input) messages.PlayerInput {
	msg := messages.FromInput(p.buf.NextSeq(), in)
	if p.ready {
		p.state, _ = kinematics.Step(p.cfg, p.state, p.traps.Filter(in), lockGate(p.locked))
	}
	p.buf.Store(msg, p.state)
	return msg
}

// Reconcile folds in the server's view of the local player. The predicted
// position is replaced and the unacknowledged inputs replayed when the room
// differs or the error at the acknowledged sequence is too large. The local
// orientation is kept.
func (p *Predictor) Reconcile(room netcomponents.NetRoomData, pose netcomponents.NetPoseData, ps netcomponents.NetPlayerStateData) bool {
	p.locked = ps.Locked
	p.portal = room.Portal
	p.traps = ps.Traps
	serverRoom := maze.Coord{X: room.X, Y: room.Y}

	if p.ready && p.state.Room() == serverRoom {
		p.state.Doors = room.Doors
		p.state.Entry, p.state.HasEntry = room.Entry, room.HasEntry
		if p.buf.PredictionError(ps.LastSequence, serverRoom, pose.X, pose.Z) <= reconcileThreshold {
			return false
		}
	}

	yaw, pitch := p.state.Pose.Yaw, p.state.Pose.Pitch
	if !p.ready {
		yaw, pitch = pose.Yaw, pose.Pitch
	}
	p.state = kinematics.State{
		RoomX:    room.X,
		RoomY:    room.Y,
		Pose:     kinematics.Pose{X: pose.X, Y: p.cfg.EyeHeight, Z: pose.Z, Yaw: yaw, Pitch: pitch},
		Doors:    room.Doors,
		Entry:    room.Entry,
		HasEntry: room.HasEntry,
	}
	p.ready = true
	p.replay(ps.LastSequence)
	return true
}

// replay re-runs the unacknowledged inputs from the current state. Each input
// is replayed at the yaw it was predicted with, so look deltas and turns are
// not applied twice.
func (p *Predictor) replay(lastAcked uint32) {
	final := p.state.Pose
	next := p.buf.nextSeq
	for _, rec := range p.buf.GetUnacknowledged(lastAcked) {
		in := rec.Input.Input()
		in.LookDX, in.LookDY = 0, 0
		in.Held[kinematics.ActionTurnLeft] = false
		in.Held[kinematics.ActionTurnRight] = false

		p.state.Pose.Yaw = rec.Pose.Yaw
		var fx kinematics.Effects
		p.state, fx = kinematics.Step(p.cfg, p.state, p.traps.Filter(in), lockGate(p.locked))
		p.buf.Store(rec.Input, p.state)
		if fx.Crossed {
			break
		}
	}
	p.state.Pose.Yaw, p.state.Pose.Pitch = final.Yaw, final.Pitch
	p.buf.nextSeq = next
}
