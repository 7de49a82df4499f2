package vec

import "fmt"

// Размер секции по каждой оси (16 блоков) и соответствующий сдвиг.
const (
	SectionSize  = 16
	SectionShift = 4
	SectionMask  = SectionSize - 1

	// SectionVolume количество ячеек в одной секции 16x16x16
	SectionVolume = SectionSize * SectionSize * SectionSize
)

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как адрес блока в мире; значение неизменяемое.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Смещения к шести соседям по граням
var faceOffsets = [6]Vec3{
	{X: 1}, {X: -1}, // восток / запад
	{Y: 1}, {Y: -1}, // верх / низ
	{Z: 1}, {Z: -1}, // юг / север
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// DistanceSq возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceSq(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Neighbors возвращает шесть соседних по граням координат
func (v Vec3) Neighbors() [6]Vec3 {
	var out [6]Vec3
	for i, off := range faceOffsets {
		out[i] = v.Add(off)
	}
	return out
}

// SectionCoords возвращает координаты секции 16x16x16, в которой лежит блок.
// Арифметический сдвиг корректно округляет отрицательные координаты вниз.
func (v Vec3) SectionCoords() Vec3 {
	return Vec3{
		X: v.X >> SectionShift,
		Y: v.Y >> SectionShift,
		Z: v.Z >> SectionShift,
	}
}

// LocalInSection возвращает координаты блока внутри его секции (0..15)
func (v Vec3) LocalInSection() Vec3 {
	return Vec3{
		X: v.X & SectionMask,
		Y: v.Y & SectionMask,
		Z: v.Z & SectionMask,
	}
}

// LocalIndex возвращает индекс ячейки внутри секции в порядке y, z, x
func (v Vec3) LocalIndex() int {
	l := v.LocalInSection()
	return (l.Y<<SectionShift|l.Z)<<SectionShift | l.X
}

// String возвращает строковое представление координат
func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
