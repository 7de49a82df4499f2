package store

import (
	"sync"
	"sync/atomic"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/datatable"
)

// Transition вычисляет новое состояние блока по текущему.
// ok == false означает, что предусловие не выполнено и блок менять нельзя.
// Функция вызывается под блокировкой секции и не должна обращаться к хранилищу.
type Transition func(current block.FullState) (next block.FullState, ok bool)

// Stats агрегированная информация о хранилище
type Stats struct {
	Sections    int    // Созданные секции
	Written     int    // Блоки, отличные от состояния по умолчанию
	AuxEntries  int    // Записи вспомогательных данных
	Transitions uint64 // Успешно применённые переходы
}

// Store хранит полное состояние и вспомогательные данные каждого блока.
// Для каждой координаты все изменяющие операции линеаризуемы: секция
// блокируется целиком на время сравнения и записи.
type Store struct {
	mu       sync.RWMutex
	sections map[vec.Vec3]*section

	transitions atomic.Uint64
}

// New создаёт пустое хранилище
func New() *Store {
	return &Store{
		sections: make(map[vec.Vec3]*section),
	}
}

// lookup возвращает секцию, если она уже создана
func (s *Store) lookup(coords vec.Vec3) *section {
	s.mu.RLock()
	sec := s.sections[coords]
	s.mu.RUnlock()
	return sec
}

// getOrCreate возвращает секцию, создавая её при необходимости
func (s *Store) getOrCreate(coords vec.Vec3) *section {
	if sec := s.lookup(coords); sec != nil {
		return sec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверяем еще раз под блокировкой записи
	if sec, exists := s.sections[coords]; exists {
		return sec
	}
	sec := newSection(coords)
	s.sections[coords] = sec
	return sec
}

// Read возвращает согласованный снимок полного состояния блока.
// Для координат, в которые ничего не записывали, возвращает block.DefaultState.
func (s *Store) Read(pos vec.Vec3) block.FullState {
	sec := s.lookup(pos.SectionCoords())
	if sec == nil {
		return block.DefaultState
	}

	sec.mu.RLock()
	defer sec.mu.RUnlock()
	return sec.states[pos.LocalIndex()]
}

// ReadAux возвращает копию таблицы вспомогательных данных блока
func (s *Store) ReadAux(pos vec.Vec3) datatable.Map {
	_, aux := s.Snapshot(pos)
	return aux
}

// GetAux возвращает одно значение вспомогательных данных
func (s *Store) GetAux(pos vec.Vec3, key string) (datatable.Value, bool) {
	sec := s.lookup(pos.SectionCoords())
	if sec == nil {
		return nil, false
	}

	sec.mu.RLock()
	defer sec.mu.RUnlock()
	return sec.aux[pos.LocalIndex()].Get(key)
}

// Snapshot возвращает состояние и копию вспомогательных данных,
// снятые в одной критической секции
func (s *Store) Snapshot(pos vec.Vec3) (block.FullState, datatable.Map) {
	sec := s.lookup(pos.SectionCoords())
	if sec == nil {
		return block.DefaultState, datatable.Map{}
	}

	idx := pos.LocalIndex()

	sec.mu.RLock()
	defer sec.mu.RUnlock()
	return sec.states[idx], sec.aux[idx].Clone()
}

// withCell выполняет fn под блокировкой записи секции, содержащей pos.
// Если секции ещё нет, сначала проверяется pre на состоянии по умолчанию:
// при невыполненном предусловии секция не создаётся.
func (s *Store) withCell(pos vec.Vec3, pre func(block.FullState) bool, fn func(sec *section, idx int) bool) bool {
	coords := pos.SectionCoords()

	sec := s.lookup(coords)
	if sec == nil {
		// Секции нет: блок в состоянии по умолчанию в этот момент
		if !pre(block.DefaultState) {
			return false
		}
		sec = s.getOrCreate(coords)
	}

	idx := pos.LocalIndex()

	sec.mu.Lock()
	defer sec.mu.Unlock()

	if !pre(sec.states[idx]) {
		return false
	}
	if !fn(sec, idx) {
		return false
	}
	s.transitions.Add(1)
	return true
}

// Update единственный примитив изменения состояния. Атомарно вычисляет
// переход fn от текущего состояния и, если он разрешён, записывает новое
// состояние и при clearAux очищает вспомогательные данные блока.
// Возвращает прежнее и новое состояние и признак применения.
func (s *Store) Update(pos vec.Vec3, fn Transition, clearAux bool) (old, next block.FullState, ok bool) {
	var candidate block.FullState
	pre := func(cur block.FullState) bool {
		old = cur
		candidate, ok = fn(cur)
		return ok
	}

	applied := s.withCell(pos, pre, func(sec *section, idx int) bool {
		sec.states[idx] = candidate
		if clearAux {
			delete(sec.aux, idx)
		}
		return true
	})
	if !applied {
		return old, old, false
	}
	return old, candidate, true
}

// Write безусловно записывает состояние; возвращает прежнее.
// При clearAux в том же переходе очищаются вспомогательные данные.
func (s *Store) Write(pos vec.Vec3, state block.FullState, clearAux bool) block.FullState {
	old, _, _ := s.Update(pos, func(block.FullState) (block.FullState, bool) {
		return state, true
	}, clearAux)
	return old
}

// CompareAndWrite записывает state, только если текущее состояние равно expect
func (s *Store) CompareAndWrite(pos vec.Vec3, expect, state block.FullState, clearAux bool) bool {
	_, _, ok := s.Update(pos, Expect(expect, state), clearAux)
	return ok
}

// CompareAndPutAux добавляет или перезаписывает key, только если текущее
// состояние равно expect
func (s *Store) CompareAndPutAux(pos vec.Vec3, expect block.FullState, key string, value datatable.Value) bool {
	return s.withCell(pos, equals(expect), func(sec *section, idx int) bool {
		table := sec.aux[idx]
		if table == nil {
			table = make(datatable.Map, 1)
			sec.aux[idx] = table
		}
		table[key] = value
		return true
	})
}

// CompareAndRemoveAux удаляет key, только если текущее состояние равно expect.
// Отсутствие ключа при совпавшем состоянии считается успехом.
func (s *Store) CompareAndRemoveAux(pos vec.Vec3, expect block.FullState, key string) bool {
	return s.withCell(pos, equals(expect), func(sec *section, idx int) bool {
		table := sec.aux[idx]
		if table == nil {
			return true
		}
		delete(table, key)
		if len(table) == 0 {
			delete(sec.aux, idx)
		}
		return true
	})
}

// Stats возвращает агрегированную статистику. Секции обходятся по одной,
// поэтому результат не является единым снимком.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	sections := make([]*section, 0, len(s.sections))
	for _, sec := range s.sections {
		sections = append(sections, sec)
	}
	s.mu.RUnlock()

	st := Stats{
		Sections:    len(sections),
		Transitions: s.transitions.Load(),
	}
	for _, sec := range sections {
		st.Written += sec.nonDefault()
		st.AuxEntries += sec.auxLen()
	}
	return st
}

// Expect возвращает переход compare-and-set: next, если текущее равно expect
func Expect(expect, next block.FullState) Transition {
	return func(cur block.FullState) (block.FullState, bool) {
		if cur != expect {
			return cur, false
		}
		return next, true
	}
}

func equals(expect block.FullState) func(block.FullState) bool {
	return func(cur block.FullState) bool {
		return cur == expect
	}
}
