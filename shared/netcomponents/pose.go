package netcomponents

import (
	"math"

	"github.com/yohamta/donburi"
)

// NetPoseData is the room-local position and orientation of a player.
type NetPoseData struct {
	X, Z  float64
	Yaw   float64
	Pitch float64
}

var NetPose = donburi.NewComponentType[NetPoseData]()

// LerpNetPose interpolates between two poses, turning the short way round.
// Large positional jumps (room changes) snap instead of sliding across the room.
func LerpNetPose(from, to NetPoseData, t float64) *NetPoseData {
	if math.Abs(to.X-from.X) > snapDistance || math.Abs(to.Z-from.Z) > snapDistance {
		return &to
	}
	return &NetPoseData{
		X:     from.X + (to.X-from.X)*t,
		Z:     from.Z + (to.Z-from.Z)*t,
		Yaw:   from.Yaw + shortestAngle(from.Yaw, to.Yaw)*t,
		Pitch: from.Pitch + (to.Pitch-from.Pitch)*t,
	}
}

const snapDistance = 3.0

func shortestAngle(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
