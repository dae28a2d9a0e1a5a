package core

import (
	"testing"

	"github.com/automoto/mazecrawl/shared/messages"
)

func TestCrawler_AcceptSequences(t *testing.T) {
	c := &crawler{}

	tests := []struct {
		seq      uint32
		accepted bool
		lastSeq  uint32
	}{
		{5, true, 5},
		{3, false, 5},
		{0, true, 5}, // unsequenced input must not rewind the ack
		{4, false, 5},
		{6, true, 6},
	}
	for _, tt := range tests {
		if got := c.accept(messages.NewPlayerInput(tt.seq)); got != tt.accepted {
			t.Fatalf("accept(%d) = %v, want %v", tt.seq, got, tt.accepted)
		}
		if c.lastInputSeq != tt.lastSeq {
			t.Fatalf("after seq %d lastInputSeq = %d, want %d", tt.seq, c.lastInputSeq, tt.lastSeq)
		}
	}
}
