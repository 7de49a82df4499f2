package store

import (
	"sync"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/datatable"
)

// section участок мира 16x16x16 блоков со своей блокировкой.
// Состояние блока и его вспомогательные данные меняются только под mu,
// поэтому смена материала и запись в таблицу не могут перемешаться.
type section struct {
	coords vec.Vec3 // Координаты секции

	mu     sync.RWMutex
	states [vec.SectionVolume]block.FullState // Полные состояния, индекс: vec.Vec3.LocalIndex
	aux    map[int]datatable.Map              // Вспомогательные данные, только для непустых таблиц
}

// newSection создаёт секцию, в которой все блоки в состоянии по умолчанию
func newSection(coords vec.Vec3) *section {
	sec := &section{
		coords: coords,
		aux:    make(map[int]datatable.Map),
	}
	if block.DefaultState != (block.FullState{}) {
		for i := range sec.states {
			sec.states[i] = block.DefaultState
		}
	}
	return sec
}

// auxLen возвращает суммарное количество записей вспомогательных данных
func (s *section) auxLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, table := range s.aux {
		n += len(table)
	}
	return n
}

// nonDefault возвращает количество блоков, отличных от состояния по умолчанию
func (s *section) nonDefault() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, st := range s.states {
		if st != block.DefaultState {
			n++
		}
	}
	return n
}
