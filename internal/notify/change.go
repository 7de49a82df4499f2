package notify

import (
	"time"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
)

// EventType тип конверта с пакетом изменений блоков
const EventType = "BlockChangeBatch"

// Приоритеты изменений при переполнении буфера
const (
	PriorityData     = 3 // Изменились только под-данные
	PriorityIdentity = 5 // Изменился материал
)

// BlockChange одно применённое изменение блока
type BlockChange struct {
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Z         int             `json:"z"`
	Old       block.FullState `json:"old"`
	New       block.FullState `json:"new"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"ts"`
	Priority  int             `json:"-"`
}

// NewBlockChange создаёт запись об изменении; приоритет выше для смены материала
func NewBlockChange(pos vec.Vec3, old, next block.FullState, source string) BlockChange {
	priority := PriorityData
	if old.ID != next.ID {
		priority = PriorityIdentity
	}
	return BlockChange{
		X:         pos.X,
		Y:         pos.Y,
		Z:         pos.Z,
		Old:       old,
		New:       next,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Priority:  priority,
	}
}

// Pos возвращает координату изменения
func (c BlockChange) Pos() vec.Vec3 {
	return vec.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}
