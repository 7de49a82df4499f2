package block

import "fmt"

// FullState атомарная единица идентичности блока: материал и под-данные.
// Значимый тип: два состояния равны, когда равны ID и Data.
type FullState struct {
	ID   BlockID `json:"id" yaml:"id"`
	Data uint16  `json:"data" yaml:"data"`
}

// DefaultState состояние любой координаты, в которую ещё ничего не записывали
var DefaultState = FullState{ID: AirBlockID}

// NewState создаёт состояние из ID и под-данных
func NewState(id BlockID, data uint16) FullState {
	return FullState{ID: id, Data: data}
}

// WithData возвращает копию состояния с другими под-данными
func (s FullState) WithData(data uint16) FullState {
	s.Data = data
	return s
}

// IsAir возвращает true для пустого блока
func (s FullState) IsAir() bool {
	return s.ID == AirBlockID
}

// String возвращает строковое представление состояния
func (s FullState) String() string {
	return fmt.Sprintf("%d:%d", s.ID, s.Data)
}
