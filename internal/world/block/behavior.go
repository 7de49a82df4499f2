package block

import (
	"sync"

	"github.com/annel0/blockaccess/internal/vec"
)

// Material описывает тип блока
type Material struct {
	ID          BlockID
	Name        string
	DefaultData uint16 // Под-данные, которые получает блок при смене материала
	Solid       bool
	Physics     PhysicsBehavior // nil, если материал не реагирует на обновления физики
}

// State возвращает состояние блока этого материала с данными по умолчанию
func (m *Material) State() FullState {
	return FullState{ID: m.ID, Data: m.DefaultData}
}

// StateWithData возвращает состояние блока этого материала с указанными данными
func (m *Material) StateWithData(data uint16) FullState {
	return FullState{ID: m.ID, Data: data}
}

// String возвращает имя материала
func (m *Material) String() string {
	return m.Name
}

// PhysicsBehavior определяет реакцию материала на обновление физики.
// Вызывается обработчиком очереди физики вне критической секции хранилища,
// поэтому изменения делаются только через compare-and-set.
type PhysicsBehavior interface {
	OnPhysics(api BlockAPI, pos vec.Vec3, state FullState)
}

// PhysicsFunc адаптер обычной функции к PhysicsBehavior
type PhysicsFunc func(api BlockAPI, pos vec.Vec3, state FullState)

// OnPhysics вызывает f
func (f PhysicsFunc) OnPhysics(api BlockAPI, pos vec.Vec3, state FullState) {
	f(api, pos, state)
}

var (
	behaviorsMu sync.RWMutex
	behaviors   = make(map[string]PhysicsBehavior)
)

// RegisterBehavior регистрирует именованное поведение физики.
// Имена используются в YAML-описаниях пользовательских материалов.
func RegisterBehavior(name string, b PhysicsBehavior) {
	behaviorsMu.Lock()
	defer behaviorsMu.Unlock()
	behaviors[name] = b
}

// LookupBehavior возвращает поведение по имени
func LookupBehavior(name string) (PhysicsBehavior, bool) {
	behaviorsMu.RLock()
	defer behaviorsMu.RUnlock()
	b, exists := behaviors[name]
	return b, exists
}
