package implementations

import (
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// MaxWaterLevel уровень источника воды. Под-данные воды хранят уровень.
const MaxWaterLevel = 7

// Water растекается по воздуху, уровень падает на единицу за клетку
var Water = &block.Material{ID: block.WaterBlockID, Name: "water", DefaultData: MaxWaterLevel, Physics: WaterFlow{}}

// WaterFlow поведение воды: вниз течёт без потери уровня,
// в стороны с уровнем на единицу ниже
type WaterFlow struct{}

// OnPhysics растекает воду в соседние пустые клетки
func (WaterFlow) OnPhysics(api block.BlockAPI, pos vec.Vec3, state block.FullState) {
	level := state.Data
	if level == 0 || level > MaxWaterLevel {
		return
	}

	below := pos.Add(down)
	if api.GetBlockState(below).IsAir() {
		replace(api, below, block.DefaultState, block.NewState(block.WaterBlockID, level))
		return
	}

	if level <= 1 {
		return
	}
	next := block.NewState(block.WaterBlockID, level-1)
	for _, dir := range horizontal {
		target := pos.Add(dir)
		current := api.GetBlockState(target)
		switch {
		case current.IsAir():
			replace(api, target, current, next)
		case current.ID == block.WaterBlockID && current.Data < level-1:
			// Поднимаем более низкий уровень соседа
			replace(api, target, current, next)
		}
	}
}
