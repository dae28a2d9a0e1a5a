package protocol

import (
	"github.com/leap-fish/necs/esync"

	"github.com/automoto/mazecrawl/shared/netcomponents"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetRoom        uint = 10
	SyncIDNetPose        uint = 11
	SyncIDNetPlayerState uint = 12
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetPose uint8 = 11
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Room: discrete, no interpolation
	if err := esync.RegisterComponent(
		SyncIDNetRoom,
		netcomponents.NetRoomData{},
		netcomponents.NetRoom,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetPose,
		netcomponents.NetPoseData{},
		netcomponents.NetPose,
		esync.WithInterpFn(InterpIDNetPose, netcomponents.LerpNetPose),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetPlayerState,
		netcomponents.NetPlayerStateData{},
		netcomponents.NetPlayerState,
	); err != nil {
		return err
	}

	return nil
}
