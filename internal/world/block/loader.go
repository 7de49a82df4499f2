package block

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaterialDef описание пользовательского материала в YAML
type MaterialDef struct {
	Name        string `yaml:"name"`
	ID          uint16 `yaml:"id,omitempty"` // 0: выдать автоматически
	DefaultData uint16 `yaml:"default_data,omitempty"`
	Solid       bool   `yaml:"solid"`
	Physics     string `yaml:"physics,omitempty"` // имя поведения из RegisterBehavior
}

// MaterialFile корневая структура файла материалов
type MaterialFile struct {
	Materials []MaterialDef `yaml:"materials"`
}

// ParseMaterials разбирает YAML с описанием материалов
func ParseMaterials(data []byte) ([]MaterialDef, error) {
	var file MaterialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ошибка разбора описаний материалов: %w", err)
	}
	return file.Materials, nil
}

// LoadMaterials читает YAML-файл и регистрирует описанные в нём
// пользовательские материалы. Возвращает зарегистрированные материалы.
func (r *Registry) LoadMaterials(path string) ([]*Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	defs, err := ParseMaterials(data)
	if err != nil {
		return nil, err
	}

	return r.RegisterDefs(defs)
}

// RegisterDefs регистрирует материалы из разобранных описаний.
// Регистрация прерывается на первой ошибке.
func (r *Registry) RegisterDefs(defs []MaterialDef) ([]*Material, error) {
	out := make([]*Material, 0, len(defs))
	for _, def := range defs {
		m := &Material{
			ID:          BlockID(def.ID),
			Name:        def.Name,
			DefaultData: def.DefaultData,
			Solid:       def.Solid,
		}

		if def.Physics != "" {
			behavior, exists := LookupBehavior(def.Physics)
			if !exists {
				return out, fmt.Errorf("материал %q: неизвестное поведение физики %q", def.Name, def.Physics)
			}
			m.Physics = behavior
		}

		registered, err := r.RegisterCustom(m)
		if err != nil {
			return out, fmt.Errorf("материал %q: %w", def.Name, err)
		}
		out = append(out, registered)
	}
	return out, nil
}
