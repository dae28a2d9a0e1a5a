package scenes

import "github.com/yohamta/donburi/ecs"

type SceneChanger interface {
	ChangeScene(scene interface{})
}

const layerDefault ecs.LayerID = 0
