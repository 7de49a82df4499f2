package implementations

import (
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

var (
	// Flower растёт только на траве или земле
	Flower = &block.Material{ID: block.FlowerBlockID, Name: "flower", Physics: Supported{On: []block.BlockID{block.GrassBlockID, block.DirtBlockID}}}
	// Cactus растёт на песке или на другом кактусе
	Cactus = &block.Material{ID: block.CactusBlockID, Name: "cactus", Solid: true, Physics: Supported{On: []block.BlockID{block.SandBlockID, block.CactusBlockID}}}
)

// Supported поведение блоков, которым нужна опора снизу. Если On пуст,
// опорой считается любой твёрдый материал. Без опоры блок разрушается,
// а обновление физики доходит до блоков, стоящих на нём.
type Supported struct {
	On []block.BlockID
}

// OnPhysics разрушает блок без подходящей опоры
func (s Supported) OnPhysics(api block.BlockAPI, pos vec.Vec3, state block.FullState) {
	if s.supported(api, pos.Add(down)) {
		return
	}
	replace(api, pos, state, block.DefaultState)
}

func (s Supported) supported(api block.BlockAPI, below vec.Vec3) bool {
	if len(s.On) == 0 {
		m, ok := api.GetBlockMaterial(below)
		return ok && m.Solid
	}

	id := api.GetBlockState(below).ID
	for _, allowed := range s.On {
		if id == allowed {
			return true
		}
	}
	return false
}
