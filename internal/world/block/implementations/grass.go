package implementations

import (
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// Grass превращается в землю, если её накрыл твёрдый блок
var Grass = &block.Material{ID: block.GrassBlockID, Name: "grass", Solid: true, Physics: GrassDecay{}}

// GrassDecay поведение травы
type GrassDecay struct{}

// OnPhysics проверяет блок сверху
func (GrassDecay) OnPhysics(api block.BlockAPI, pos vec.Vec3, state block.FullState) {
	above := pos.Add(up)
	m, ok := api.GetBlockMaterial(above)
	if !ok || !m.Solid {
		return
	}
	replace(api, pos, state, Dirt.State())
}
