package scenes

import (
	"image/color"
	"log"
	"sync"

	"github.com/automoto/mazecrawl/components"
	cfg "github.com/automoto/mazecrawl/config"
	"github.com/automoto/mazecrawl/network"
	"github.com/automoto/mazecrawl/shared/netcomponents"
	"github.com/automoto/mazecrawl/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// NetworkedScene crawls a maze hosted by the server. The local player is
// predicted; everyone else follows the server snapshots.
type NetworkedScene struct {
	ecsWorld     *ecs.ECS
	sceneChanger SceneChanger
	netClient    *network.Client
	prediction   *network.Predictor
	once         sync.Once
	presentIDs   map[esync.NetworkId]bool
	sizeKnown    bool
}

func NewNetworkedScene(sc SceneChanger, client *network.Client) *NetworkedScene {
	return &NetworkedScene{
		sceneChanger: sc,
		netClient:    client,
		prediction:   network.NewPredictor(cfg.Player),
		presentIDs:   make(map[esync.NetworkId]bool),
	}
}

func (ns *NetworkedScene) Update() {
	ns.once.Do(ns.configure)

	state := ns.netClient.State()
	if state == network.StateDisconnected || state == network.StateError {
		reason := "Disconnected from server"
		if err := ns.netClient.LastError(); err != nil {
			reason = err.Error()
		}
		log.Printf("[networked] %s", reason)
		ns.netClient.Disconnect()
		ns.sceneChanger.ChangeScene(NewDisconnectedScene(ns.sceneChanger, reason))
		return
	}

	if !ns.sizeKnown {
		if size, ok := ns.netClient.MazeSize(); ok {
			systems.SetMazeSize(ns.ecsWorld, size.Width, size.Height)
			ns.sizeKnown = true
		}
	}

	if snap := ns.netClient.LatestSnapshot(); snap != nil {
		ns.applySnapshot(*snap)
	}

	ns.ecsWorld.Update()
}

func (ns *NetworkedScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	if ns.ecsWorld == nil {
		return
	}

	ns.ecsWorld.Draw(screen)
}

func (ns *NetworkedScene) configure() {
	ns.ecsWorld = ecs.NewECS(donburi.NewWorld())

	ns.ecsWorld.AddSystem(systems.UpdateInput)
	ns.ecsWorld.AddSystem(systems.UpdateMinimap)
	ns.ecsWorld.AddSystem(systems.NewNetworkInputSystem(ns.netClient, ns.prediction))
	ns.ecsWorld.AddSystem(systems.NewNetInterpSystem(ns.netClient.TickRate))
	ns.ecsWorld.AddSystem(systems.UpdateFade)
	ns.ecsWorld.AddSystem(systems.UpdateMessage)

	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawRoom)
	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawNetworkedPlayers)
	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawMinimap)
	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawHUD)
	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawMessage)
	ns.ecsWorld.AddRenderer(layerDefault, systems.DrawFade)

	systems.SetMode(ns.ecsWorld, "online")
}

func (ns *NetworkedScene) applySnapshot(snapshot esync.WorldSnapshot) {
	world := ns.ecsWorld.World
	myNetID := ns.netClient.NetworkID()

	clear(ns.presentIDs)

	for _, ent := range snapshot {
		ns.presentIDs[ent.Id] = true

		var compData []any
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			compData = append(compData, instance)
		}

		entity := esync.FindByNetworkId(world, ent.Id)
		if !world.Valid(entity) {
			entity = world.Create(componentTypesFromInstances(compData)...)

			entry := world.Entry(entity)
			entry.AddComponent(esync.NetworkIdComponent)
			esync.NetworkIdComponent.SetValue(entry, ent.Id)
			entry.AddComponent(components.NetInterp)
		}

		entry := world.Entry(entity)

		if ent.Id == myNetID {
			// Local player: reconcile prediction instead of overwriting
			ns.reconcileLocal(entry, compData)
			continue
		}

		for _, data := range compData {
			pose, ok := data.(netcomponents.NetPoseData)
			if !ok {
				applyComponentToEntry(entry, data)
				continue
			}
			interp := components.NetInterp.Get(entry)
			if !interp.Initialized {
				// First snapshot: place directly, no interpolation
				applyComponentToEntry(entry, data)
				interp.Prev, interp.Target = pose, pose
				interp.T = 1
				interp.Initialized = true
				continue
			}
			// Subsequent snapshots: start from the currently drawn pose
			interp.Prev = *netcomponents.NetPose.Get(entry)
			interp.Target = pose
			interp.T = 0
		}
	}

	esync.NetworkEntityQuery.Each(world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil {
			return
		}
		if !ns.presentIDs[*id] {
			entry.Remove()
		}
	})
}

// reconcileLocal feeds the server's view of the local player to the
// predictor. The entity itself is marked local so it is not drawn twice.
func (ns *NetworkedScene) reconcileLocal(entry *donburi.Entry, compData []any) {
	var room *netcomponents.NetRoomData
	var pose *netcomponents.NetPoseData
	var state *netcomponents.NetPlayerStateData

	for _, data := range compData {
		switch v := data.(type) {
		case netcomponents.NetRoomData:
			room = &v
		case netcomponents.NetPoseData:
			pose = &v
		case netcomponents.NetPlayerStateData:
			state = &v
		}
		applyComponentToEntry(entry, data)
	}
	if entry.HasComponent(netcomponents.NetPlayerState) {
		netcomponents.NetPlayerState.Get(entry).IsLocal = true
	}

	if room != nil && pose != nil && state != nil {
		ns.prediction.Reconcile(*room, *pose, *state)
	}
}

func componentTypesFromInstances(compData []any) []donburi.IComponentType {
	var ctypes []donburi.IComponentType
	for _, data := range compData {
		switch data.(type) {
		case netcomponents.NetRoomData:
			ctypes = append(ctypes, netcomponents.NetRoom)
		case netcomponents.NetPoseData:
			ctypes = append(ctypes, netcomponents.NetPose)
		case netcomponents.NetPlayerStateData:
			ctypes = append(ctypes, netcomponents.NetPlayerState)
		}
	}
	return ctypes
}

func applyComponentToEntry(entry *donburi.Entry, data any) {
	switch v := data.(type) {
	case netcomponents.NetRoomData:
		if !entry.HasComponent(netcomponents.NetRoom) {
			entry.AddComponent(netcomponents.NetRoom)
		}
		netcomponents.NetRoom.SetValue(entry, v)
	case netcomponents.NetPoseData:
		if !entry.HasComponent(netcomponents.NetPose) {
			entry.AddComponent(netcomponents.NetPose)
		}
		netcomponents.NetPose.SetValue(entry, v)
	case netcomponents.NetPlayerStateData:
		if !entry.HasComponent(netcomponents.NetPlayerState) {
			entry.AddComponent(netcomponents.NetPlayerState)
		}
		netcomponents.NetPlayerState.SetValue(entry, v)
	}
}
