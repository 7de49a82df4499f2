package main

import (
	"math/rand"

	"github.com/annel0/blockaccess/internal/util"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/block/implementations"
)

const (
	baseHeight = 32
	amplitude  = 8
	seaLevel   = 30
	edgeMargin = 2
)

var terrainSource = access.NamedSource("terrain")

// area участок мира, на котором работает нагрузка
type area struct {
	radius  int
	heights map[[2]int]int
}

func newArea(radius int, seed int64) *area {
	hm := util.NewHeightmap(seed, baseHeight, amplitude)
	a := &area{radius: radius, heights: make(map[[2]int]int, 4*radius*radius)}
	for x := -radius; x < radius; x++ {
		for z := -radius; z < radius; z++ {
			a.heights[[2]int{x, z}] = hm.Height(x, z)
		}
	}
	return a
}

// random возвращает колонку не ближе edgeMargin к границе участка,
// чтобы вода на краю не растекалась за его пределы
func (a *area) random(rnd *rand.Rand) (int, int) {
	inner := a.radius - edgeMargin
	if inner < 1 {
		inner = 1
	}
	return rnd.Intn(2*inner) - inner, rnd.Intn(2*inner) - inner
}

// surface возвращает координату верхнего блока колонки
func (a *area) surface(x, z int) vec.Vec3 {
	return vec.Vec3{X: x, Y: a.heights[[2]int{x, z}], Z: z}
}

// seed заполняет участок без побочных эффектов и возвращает число записанных блоков
func (a *area) seed(acc *access.Access) int {
	written := 0
	put := func(pos vec.Vec3, m *block.Material) {
		if ok, err := acc.SetBlockMaterial(pos, m, access.NoFlags, terrainSource); err == nil && ok {
			written++
		}
	}

	for x := -a.radius; x < a.radius; x++ {
		for z := -a.radius; z < a.radius; z++ {
			h := a.heights[[2]int{x, z}]
			for y := h - amplitude; y <= h; y++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				switch {
				case y < h-3:
					put(pos, implementations.Stone)
				case y < h:
					put(pos, implementations.Dirt)
				case h <= seaLevel:
					put(pos, implementations.Sand)
				default:
					put(pos, implementations.Grass)
				}
			}
			for y := h + 1; y <= seaLevel; y++ {
				put(vec.Vec3{X: x, Y: y, Z: z}, implementations.Water)
			}
		}
	}
	return written
}
