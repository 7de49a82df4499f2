package datatable

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind тип значения вспомогательных данных
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindBytes
)

// String возвращает имя типа
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Value непрозрачное значение, хранимое в таблице вспомогательных данных блока.
// Реализации неизменяемы: хранилище отдаёт наружу те же значения без копирования.
type Value interface {
	Kind() Kind
	Equal(other Value) bool
	String() string
}

// StringValue строковое значение
type StringValue string

func (v StringValue) Kind() Kind     { return KindString }
func (v StringValue) String() string { return string(v) }
func (v StringValue) Equal(other Value) bool {
	o, ok := other.(StringValue)
	return ok && o == v
}

// IntValue целочисленное значение
type IntValue int64

func (v IntValue) Kind() Kind     { return KindInt }
func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (v IntValue) Equal(other Value) bool {
	o, ok := other.(IntValue)
	return ok && o == v
}

// FloatValue значение с плавающей точкой
type FloatValue float64

func (v FloatValue) Kind() Kind     { return KindFloat }
func (v FloatValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v FloatValue) Equal(other Value) bool {
	o, ok := other.(FloatValue)
	return ok && o == v
}

// BoolValue логическое значение
type BoolValue bool

func (v BoolValue) Kind() Kind     { return KindBool }
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }
func (v BoolValue) Equal(other Value) bool {
	o, ok := other.(BoolValue)
	return ok && o == v
}

// BytesValue произвольные байты. Срез копируется при создании и при чтении,
// поэтому значение нельзя изменить снаружи.
type BytesValue struct {
	b []byte
}

// Bytes создаёт значение из копии среза
func Bytes(b []byte) BytesValue {
	return BytesValue{b: append([]byte(nil), b...)}
}

func (v BytesValue) Kind() Kind     { return KindBytes }
func (v BytesValue) String() string { return fmt.Sprintf("%x", v.b) }

// Bytes возвращает копию содержимого
func (v BytesValue) Bytes() []byte { return append([]byte(nil), v.b...) }

// Len возвращает длину содержимого
func (v BytesValue) Len() int { return len(v.b) }

func (v BytesValue) Equal(other Value) bool {
	o, ok := other.(BytesValue)
	return ok && bytes.Equal(o.b, v.b)
}

// Of преобразует значение Go в Value. Возвращает ошибку для неподдерживаемых типов.
func Of(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("пустое значение")
	case Value:
		return x, nil
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(x), nil
	case int32:
		return IntValue(x), nil
	case int64:
		return IntValue(x), nil
	case uint16:
		return IntValue(x), nil
	case float32:
		return FloatValue(x), nil
	case float64:
		return FloatValue(x), nil
	case bool:
		return BoolValue(x), nil
	case []byte:
		return Bytes(x), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый тип значения %T", v)
	}
}
