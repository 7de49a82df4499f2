package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Heightmap генерирует высоту поверхности по шуму Перлина.
// Один экземпляр детерминирован для сида; не безопасен для конкурентного
// использования, поэтому каждая горутина создаёт свой.
type Heightmap struct {
	noise *perlin.Perlin
	scale float64
	base  int
	amp   int
}

// NewHeightmap создаёт карту высот: высота колеблется в [base-amp, base+amp]
func NewHeightmap(seed int64, base, amp int) *Heightmap {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Heightmap{
		noise: perlin.NewPerlin(alpha, beta, n, seed),
		scale: 1.0 / 32.0,
		base:  base,
		amp:   amp,
	}
}

// Noise2D возвращает значение шума в точке (от 0 до 1)
func (h *Heightmap) Noise2D(x, z float64) float64 {
	v := (h.noise.Noise2D(x, z) + 1.0) / 2.0
	return math.Max(0, math.Min(1, v))
}

// Height возвращает высоту поверхности в колонке (x, z)
func (h *Heightmap) Height(x, z int) int {
	v := h.Noise2D(float64(x)*h.scale, float64(z)*h.scale)
	return h.base - h.amp + int(math.Round(v*float64(2*h.amp)))
}
