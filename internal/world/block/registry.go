package block

import (
	"fmt"
	"sort"
	"sync"
)

// BlockID представляет идентификатор материала блока
type BlockID uint16

// MaxBuiltinID последний идентификатор встроенного диапазона.
// Идентификаторы выше должны соответствовать зарегистрированному
// пользовательскому материалу, иначе они недействительны.
const MaxBuiltinID BlockID = 255

// FirstCustomID первый идентификатор, выдаваемый пользовательским материалам
const FirstCustomID = MaxBuiltinID + 1

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1
	GrassBlockID                // 2
	WaterBlockID                // 3
	SandBlockID                 // 4
	DirtBlockID                 // 5

	// Декоративные блоки (начиная с 100)
	FlowerBlockID BlockID = 100 // Цветок
	TreeBlockID   BlockID = 101 // Дерево
	CactusBlockID BlockID = 102 // Кактус

	// Интерактивные блоки (начиная с 200)
	ChestBlockID BlockID = 200 // Сундук
	DoorBlockID  BlockID = 201 // Дверь
)

// IsBuiltin возвращает true для идентификаторов встроенного диапазона
func (id BlockID) IsBuiltin() bool {
	return id <= MaxBuiltinID
}

// Registry хранит зарегистрированные материалы.
// Безопасен для одновременного чтения и регистрации.
type Registry struct {
	mu         sync.RWMutex
	byID       map[BlockID]*Material
	byName     map[string]*Material
	nextCustom BlockID
}

// NewRegistry создаёт пустой реестр материалов
func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[BlockID]*Material),
		byName:     make(map[string]*Material),
		nextCustom: FirstCustomID,
	}
}

// Register добавляет материал с заранее заданным ID
func (r *Registry) Register(m *Material) error {
	if m == nil {
		return fmt.Errorf("материал не задан")
	}
	if m.Name == "" {
		return fmt.Errorf("материал %d без имени", m.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.registerLocked(m)
}

// RegisterCustom регистрирует пользовательский материал.
// Если ID не задан (0), выдаётся следующий свободный ID выше MaxBuiltinID.
func (r *Registry) RegisterCustom(m *Material) (*Material, error) {
	if m == nil {
		return nil, fmt.Errorf("материал не задан")
	}
	if m.Name == "" {
		return nil, fmt.Errorf("пользовательский материал без имени")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == AirBlockID {
		for {
			if _, busy := r.byID[r.nextCustom]; !busy {
				break
			}
			if r.nextCustom == ^BlockID(0) {
				return nil, fmt.Errorf("исчерпан диапазон пользовательских ID")
			}
			r.nextCustom++
		}
		m.ID = r.nextCustom
	} else if m.ID.IsBuiltin() {
		return nil, fmt.Errorf("ID %d входит во встроенный диапазон (<= %d)", m.ID, MaxBuiltinID)
	}

	if err := r.registerLocked(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Registry) registerLocked(m *Material) error {
	if existing, exists := r.byID[m.ID]; exists {
		return fmt.Errorf("ID %d уже занят материалом %q", m.ID, existing.Name)
	}
	if existing, exists := r.byName[m.Name]; exists {
		return fmt.Errorf("имя %q уже занято материалом %d", m.Name, existing.ID)
	}

	r.byID[m.ID] = m
	r.byName[m.Name] = m
	if m.ID >= r.nextCustom && m.ID != ^BlockID(0) {
		r.nextCustom = m.ID + 1
	}
	return nil
}

// Get возвращает материал для указанного ID
func (r *Registry) Get(id BlockID) (*Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.byID[id]
	return m, exists
}

// Resolve возвращает материал для ID; используется фасадом доступа к блокам
func (r *Registry) Resolve(id BlockID) (*Material, bool) {
	return r.Get(id)
}

// ByName возвращает материал по имени
func (r *Registry) ByName(name string) (*Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.byName[name]
	return m, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока.
// Встроенный диапазон допустим всегда.
func (r *Registry) IsValidBlockID(id BlockID) bool {
	if id.IsBuiltin() {
		return true
	}
	_, exists := r.Get(id)
	return exists
}

// Materials возвращает все материалы, отсортированные по ID
func (r *Registry) Materials() []*Material {
	r.mu.RLock()
	out := make([]*Material, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Глобальный реестр, заполняемый пакетом implementations при импорте
var defaultRegistry = NewRegistry()

// Default возвращает глобальный реестр материалов
func Default() *Registry {
	return defaultRegistry
}

// Register добавляет материал в глобальный реестр
func Register(m *Material) error {
	return defaultRegistry.Register(m)
}

// Get возвращает материал из глобального реестра
func Get(id BlockID) (*Material, bool) {
	return defaultRegistry.Get(id)
}

// IsValidBlockID проверяет ID по глобальному реестру
func IsValidBlockID(id BlockID) bool {
	return defaultRegistry.IsValidBlockID(id)
}
