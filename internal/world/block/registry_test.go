package block

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/blockaccess/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinRangeAlwaysValid(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.IsValidBlockID(AirBlockID))
	assert.True(t, r.IsValidBlockID(MaxBuiltinID), "встроенный диапазон допустим без регистрации")
	assert.False(t, r.IsValidBlockID(5000), "незарегистрированный пользовательский ID недопустим")
}

func TestRegistry_RegisterCustom(t *testing.T) {
	r := NewRegistry()

	marble, err := r.RegisterCustom(&Material{Name: "marble", Solid: true})
	require.NoError(t, err)
	assert.Equal(t, FirstCustomID, marble.ID, "первый пользовательский ID выдаётся сразу за встроенным диапазоном")

	basalt, err := r.RegisterCustom(&Material{Name: "basalt", ID: 400})
	require.NoError(t, err)
	assert.Equal(t, BlockID(400), basalt.ID)

	next, err := r.RegisterCustom(&Material{Name: "slate"})
	require.NoError(t, err)
	assert.Equal(t, BlockID(401), next.ID, "автоматический ID продолжается после явно заданного")

	resolved, ok := r.Resolve(400)
	require.True(t, ok)
	assert.Equal(t, "basalt", resolved.Name)
	assert.True(t, r.IsValidBlockID(400))

	_, err = r.RegisterCustom(&Material{Name: "fake", ID: StoneBlockID})
	assert.Error(t, err, "пользовательский материал не может занять встроенный ID")

	_, err = r.RegisterCustom(&Material{Name: "marble"})
	assert.Error(t, err, "имя материала должно быть уникальным")

	_, err = r.RegisterCustom(nil)
	assert.Error(t, err)
}

func TestRegistry_Materials(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Material{ID: DirtBlockID, Name: "dirt"}))
	require.NoError(t, r.Register(&Material{ID: AirBlockID, Name: "air"}))
	assert.Error(t, r.Register(&Material{ID: AirBlockID, Name: "void"}), "ID уже занят")

	list := r.Materials()
	require.Len(t, list, 2)
	assert.Equal(t, AirBlockID, list[0].ID)
	assert.Equal(t, DirtBlockID, list[1].ID)

	m, ok := r.ByName("dirt")
	require.True(t, ok)
	assert.Equal(t, FullState{ID: DirtBlockID}, m.State())
}

func TestRegistry_LoadMaterials(t *testing.T) {
	calls := 0
	RegisterBehavior("test_counter", PhysicsFunc(func(api BlockAPI, pos vec.Vec3, state FullState) {
		calls++
	}))

	dir := t.TempDir()
	path := filepath.Join(dir, "materials.yaml")
	content := `
materials:
  - name: glowstone
    solid: true
    default_data: 3
    physics: test_counter
  - name: obsidian
    id: 900
    solid: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewRegistry()
	loaded, err := r.LoadMaterials(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	glow, ok := r.ByName("glowstone")
	require.True(t, ok)
	assert.Equal(t, FirstCustomID, glow.ID)
	assert.Equal(t, FullState{ID: FirstCustomID, Data: 3}, glow.State())
	require.NotNil(t, glow.Physics)
	glow.Physics.OnPhysics(nil, vec.Vec3{}, glow.State())
	assert.Equal(t, 1, calls)

	obsidian, ok := r.Resolve(900)
	require.True(t, ok)
	assert.Equal(t, "obsidian", obsidian.Name)
	assert.Nil(t, obsidian.Physics)
}

func TestRegistry_LoadMaterialsUnknownBehavior(t *testing.T) {
	r := NewRegistry()
	_, err := r.RegisterDefs([]MaterialDef{{Name: "weird", Physics: "does_not_exist"}})
	assert.Error(t, err)
	_, ok := r.ByName("weird")
	assert.False(t, ok, "материал с ошибкой не должен регистрироваться")
}

func TestFullState_Equality(t *testing.T) {
	a := NewState(StoneBlockID, 2)
	assert.Equal(t, a, FullState{ID: StoneBlockID, Data: 2})
	assert.NotEqual(t, a, a.WithData(3))
	assert.True(t, DefaultState.IsAir())
	assert.Equal(t, "1:2", a.String())
}
