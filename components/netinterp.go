package components

import (
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/yohamta/donburi"
)

// NetInterpData stores interpolation state for smooth rendering of remote
// networked entities between server snapshots.
type NetInterpData struct {
	Prev, Target netcomponents.NetPoseData
	T            float64
	Initialized  bool
}

var NetInterp = donburi.NewComponentType[NetInterpData]()
