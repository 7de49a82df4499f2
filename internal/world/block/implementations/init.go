package implementations

import (
	"fmt"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// Регистрируем встроенные материалы и именованные поведения при импорте пакета
func init() {
	block.RegisterBehavior("gravity", Gravity{})
	block.RegisterBehavior("water_flow", WaterFlow{})
	block.RegisterBehavior("grass_decay", GrassDecay{})
	block.RegisterBehavior("needs_solid", Supported{})

	if err := RegisterInto(block.Default()); err != nil {
		panic(err)
	}
}

// Builtins возвращает встроенные материалы
func Builtins() []*block.Material {
	return []*block.Material{Air, Stone, Grass, Water, Sand, Dirt, Flower, Tree, Cactus, Chest, Door}
}

// RegisterInto регистрирует встроенные материалы в реестре
func RegisterInto(reg *block.Registry) error {
	for _, m := range Builtins() {
		if err := reg.Register(m); err != nil {
			return fmt.Errorf("регистрация %s: %w", m.Name, err)
		}
	}
	return nil
}

// replace заменяет состояние блока через CAS и при успехе уведомляет
// наблюдателей и планирует физику вокруг
func replace(api block.BlockAPI, pos vec.Vec3, expect, next block.FullState) bool {
	ok, err := api.CompareAndSetState(pos, expect, next)
	if err != nil || !ok {
		return false
	}
	api.NotifyChange(pos, expect, next)
	api.UpdatePhysics(pos)
	return true
}

var (
	up   = vec.Vec3{Y: 1}
	down = vec.Vec3{Y: -1}

	horizontal = [4]vec.Vec3{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}
)
