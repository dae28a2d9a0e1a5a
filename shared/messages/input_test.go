package messages

import (
	"testing"

	"github.com/automoto/mazecrawl/shared/kinematics"
)

func TestPlayerInputIgnoresUnknownActions(t *testing.T) {
	msg := NewPlayerInput(7)
	msg.Actions[kinematics.ActionForward] = true
	msg.Actions[kinematics.ActionCount+3] = true
	msg.Actions[kinematics.ActionBack] = false
	msg.LookDX = 2

	in := msg.Input()
	if !in.Held[kinematics.ActionForward] || in.Held[kinematics.ActionBack] {
		t.Fatalf("unexpected held set %v", in.Held)
	}
	if in.LookDX != 2 {
		t.Fatalf("LookDX = %v", in.LookDX)
	}
	if got := FromInput(8, in); len(got.Actions) != 1 || got.Sequence != 8 {
		t.Fatalf("FromInput = %+v", got)
	}
}
