package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_SectionCoords(t *testing.T) {
	assert.Equal(t, Vec3{0, 0, 0}, Vec3{X: 15, Y: 0, Z: 7}.SectionCoords())
	assert.Equal(t, Vec3{1, 0, 0}, Vec3{X: 16, Y: 0, Z: 0}.SectionCoords())
	// Отрицательные координаты округляются вниз, а не к нулю
	assert.Equal(t, Vec3{-1, -1, -1}, Vec3{X: -1, Y: -16, Z: -5}.SectionCoords())
	assert.Equal(t, Vec3{-2, 0, 0}, Vec3{X: -17}.SectionCoords())
}

func TestVec3_LocalIndex(t *testing.T) {
	assert.Equal(t, 0, Vec3{}.LocalIndex())
	assert.Equal(t, Vec3{X: 15, Y: 15, Z: 15}, Vec3{X: -1, Y: -1, Z: -1}.LocalInSection())
	assert.Equal(t, SectionVolume-1, Vec3{X: -1, Y: -1, Z: -1}.LocalIndex())

	// Все индексы внутри одной секции уникальны
	seen := make(map[int]struct{}, SectionVolume)
	for x := 0; x < SectionSize; x++ {
		for y := 0; y < SectionSize; y++ {
			for z := 0; z < SectionSize; z++ {
				idx := Vec3{X: x, Y: y, Z: z}.LocalIndex()
				_, dup := seen[idx]
				assert.False(t, dup, "индекс %d повторяется", idx)
				seen[idx] = struct{}{}
			}
		}
	}
	assert.Len(t, seen, SectionVolume)
}

func TestVec3_Neighbors(t *testing.T) {
	center := Vec3{X: 3, Y: 64, Z: -2}
	neighbors := center.Neighbors()
	list := neighbors[:]

	for _, n := range neighbors {
		assert.Equal(t, 1, center.DistanceSq(n), "сосед %v не примыкает гранью", n)
	}
	assert.Contains(t, list, Vec3{X: 3, Y: 65, Z: -2})
	assert.Contains(t, list, Vec3{X: 3, Y: 64, Z: -3})
}
