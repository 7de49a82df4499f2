package block

import (
	"github.com/annel0/blockaccess/internal/vec"
)

// BlockAPI определяет интерфейс, через который поведение материала читает
// и изменяет мир во время обработки физики. Все изменения условные:
// поведение сравнивает ожидаемое состояние и само решает, что делать
// при конфликте.
type BlockAPI interface {
	// GetBlockState возвращает текущее состояние блока.
	GetBlockState(pos vec.Vec3) FullState

	// GetBlockMaterial возвращает материал блока, если его ID зарегистрирован.
	GetBlockMaterial(pos vec.Vec3) (*Material, bool)

	// CompareAndSetState заменяет состояние, если текущее совпадает с expect.
	CompareAndSetState(pos vec.Vec3, expect, next FullState) (bool, error)

	// UpdatePhysics планирует пересчёт физики блока и его соседей.
	UpdatePhysics(pos vec.Vec3)

	// NotifyChange сообщает наблюдателям об изменении, применённом через CAS.
	NotifyChange(pos vec.Vec3, old, next FullState)
}
