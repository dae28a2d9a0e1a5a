package netcomponents

import (
	"math"
	"testing"
)

func TestLerpNetPose(t *testing.T) {
	from := NetPoseData{X: 0, Z: 0, Yaw: 0.1}
	to := NetPoseData{X: 1, Z: -1, Yaw: 2*math.Pi - 0.1}
	got := LerpNetPose(from, to, 0.5)
	if got.X != 0.5 || got.Z != -0.5 {
		t.Fatalf("position = (%v,%v)", got.X, got.Z)
	}
	if math.Abs(got.Yaw) > 1e-9 {
		t.Fatalf("expected yaw to turn through zero, got %v", got.Yaw)
	}
}

func TestLerpNetPoseSnapsOnRoomChange(t *testing.T) {
	from := NetPoseData{X: 4.1}
	to := NetPoseData{X: -4}
	if got := LerpNetPose(from, to, 0.1); got.X != -4 {
		t.Fatalf("expected snap to -4, got %v", got.X)
	}
}
