package datatable

import (
	"sort"
	"unicode/utf8"
)

// MaxKeyLen максимальная длина ключа в байтах
const MaxKeyLen = 255

// Map таблица вспомогательных данных одного блока: ключ -> значение.
// Ключи уникальны, порядок не важен. Сама по себе не синхронизирована:
// владелец (хранилище) изменяет её только под блокировкой ячейки.
type Map map[string]Value

// ValidKey проверяет ключ: непустой, не длиннее MaxKeyLen, корректный UTF-8
func ValidKey(key string) bool {
	return key != "" && len(key) <= MaxKeyLen && utf8.ValidString(key)
}

// Get возвращает значение по ключу
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Len возвращает количество записей
func (m Map) Len() int {
	return len(m)
}

// Clone создаёт копию таблицы. Значения неизменяемы, поэтому копируются ссылки.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys возвращает отсортированный список ключей
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal сравнивает две таблицы по содержимому
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ToPlain преобразует таблицу в map[string]interface{} со строковыми значениями,
// удобную для логирования и отладочного вывода
func (m Map) ToPlain() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}
