package physics

import (
	"context"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// Resolver разрешает ID блока в материал
type Resolver interface {
	Resolve(id block.BlockID) (*block.Material, bool)
}

// MaterialPhysics обработчик, передающий координату поведению физики
// её текущего материала. Блоки без поведения пропускаются.
type MaterialPhysics struct {
	api      block.BlockAPI
	resolver Resolver
}

// NewMaterialPhysics создаёт обработчик поверх api и реестра материалов
func NewMaterialPhysics(api block.BlockAPI, resolver Resolver) *MaterialPhysics {
	return &MaterialPhysics{api: api, resolver: resolver}
}

// Process читает состояние блока и вызывает OnPhysics его материала
func (p *MaterialPhysics) Process(_ context.Context, pos vec.Vec3) {
	state := p.api.GetBlockState(pos)
	m, ok := p.resolver.Resolve(state.ID)
	if !ok || m.Physics == nil {
		return
	}
	m.Physics.OnPhysics(p.api, pos, state)
}
