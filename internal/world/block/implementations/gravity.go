package implementations

import (
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// Sand падает, пока под ним воздух или вода
var Sand = &block.Material{ID: block.SandBlockID, Name: "sand", Solid: true, Physics: Gravity{}}

// Gravity поведение сыпучих материалов: блок опускается на одну клетку
// за обновление, пока под ним есть проходимый блок. Дальнейшее падение
// продолжается через запланированное обновление физики.
type Gravity struct{}

// OnPhysics перемещает блок вниз
func (Gravity) OnPhysics(api block.BlockAPI, pos vec.Vec3, state block.FullState) {
	below := pos.Add(down)
	target := api.GetBlockState(below)
	if !passable(target) {
		return
	}

	// Сначала занимаем клетку снизу, затем освобождаем текущую.
	// Если текущая уже изменилась, возвращаем нижнюю обратно.
	if !replace(api, below, target, state) {
		return
	}
	if !replace(api, pos, state, target) {
		replace(api, below, state, target)
	}
}

// passable сообщает, может ли сыпучий блок занять клетку
func passable(state block.FullState) bool {
	return state.IsAir() || state.ID == block.WaterBlockID
}
