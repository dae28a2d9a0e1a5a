package systems

import (
	"fmt"

	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/fonts"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NewNetInterpSystem moves remote players from their previous snapshot pose
// towards the latest one over one server tick.
func NewNetInterpSystem(tickRate func() int) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		rate := tickRate()
		if rate <= 0 {
			rate = 20
		}
		step := float64(rate) / float64(ebiten.TPS())

		components.NetInterp.Each(e.World, func(entry *donburi.Entry) {
			interp := components.NetInterp.Get(entry)
			if !interp.Initialized || interp.T >= 1 {
				return
			}
			interp.T = min(interp.T+step, 1)
			netcomponents.NetPose.SetValue(entry, *netcomponents.LerpNetPose(interp.Prev, interp.Target, interp.T))
		})
	}
}

// DrawNetworkedPlayers draws every other player standing in the local
// player's room, labelled with its name.
func DrawNetworkedPlayers(e *ecs.ECS, screen *ebiten.Image) {
	view := getOrCreateView(e)
	if !view.Ready || view.Traps.Blind {
		return
	}
	t := newRoomTransform(screen)
	small := fonts.HUDSmall.Get()

	esync.NetworkEntityQuery.Each(e.World, func(entry *donburi.Entry) {
		if !entry.HasComponent(netcomponents.NetRoom) || !entry.HasComponent(netcomponents.NetPose) {
			return
		}
		var state netcomponents.NetPlayerStateData
		if entry.HasComponent(netcomponents.NetPlayerState) {
			state = *netcomponents.NetPlayerState.Get(entry)
		}
		if state.IsLocal {
			return
		}
		room := netcomponents.NetRoom.Get(entry)
		if room.X != view.Room.X || room.Y != view.Room.Y {
			return
		}

		pose := netcomponents.NetPose.Get(entry)
		drawCrawler(screen, t, pose.X, pose.Z, pose.Yaw, cfg.OtherDot)

		label := state.Name
		if state.Bot {
			label = fmt.Sprintf("%s (bot)", label)
		}
		px, py := t.point(pose.X, pose.Z)
		r := float32(cfg.Player.Radius) * t.scale
		text.Draw(screen, label, small, int(px)-len(label)*3, int(py-r)-6, cfg.White)
	})
}
