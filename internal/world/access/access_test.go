package access

import (
	"errors"
	"sync"
	"testing"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/datatable"
	"github.com/annel0/blockaccess/internal/world/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder запоминает вызовы планировщика и уведомлений
type recorder struct {
	mu        sync.Mutex
	scheduled []vec.Vec3
	changes   []change
}

type change struct {
	pos       vec.Vec3
	old, next block.FullState
	src       string
}

func (r *recorder) Schedule(pos vec.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, pos)
}

func (r *recorder) Notify(pos vec.Vec3, old, next block.FullState, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change{pos: pos, old: old, next: next, src: src.String()})
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scheduled), len(r.changes)
}

var (
	m1 = &block.Material{ID: block.StoneBlockID, Name: "stone", Solid: true}
	m2 = &block.Material{ID: block.DirtBlockID, Name: "dirt", DefaultData: 3, Solid: true}
)

func newTestAccess(t *testing.T, opts ...Option) (*Access, *recorder, *block.Registry) {
	t.Helper()

	reg := block.NewRegistry()
	require.NoError(t, reg.Register(m1))
	require.NoError(t, reg.Register(m2))

	rec := &recorder{}
	opts = append([]Option{WithPhysics(rec), WithNotifier(rec)}, opts...)
	return New(store.New(), reg, opts...), rec, reg
}

func TestScenario_IdentityChangeClearsAux(t *testing.T) {
	a, _, _ := newTestAccess(t)
	pos := vec.Vec3{X: 0, Y: 0, Z: 0}

	assert.Equal(t, block.DefaultState, a.GetBlockState(pos))

	ok, err := a.SetBlockMaterial(pos, m1, DefaultFlags, NamedSource("test"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, block.NewState(m1.ID, 0), a.GetBlockState(pos))
	assert.Equal(t, 0, a.GetBlockAux(pos).Len())

	ok, err = a.CompareAndPut(pos, block.NewState(m1.ID, 0), "label", datatable.StringValue("north"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.GetBlockAux(pos).Equal(datatable.Map{"label": datatable.StringValue("north")}))

	ok, err = a.SetBlockID(pos, m2.ID, DefaultFlags, NamedSource("other"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, a.GetBlockAux(pos).Len(), "смена ID очищает вспомогательные данные")
	assert.Equal(t, block.NewState(m2.ID, m2.DefaultData), a.GetBlockState(pos), "под-данные сбрасываются к значению материала")

	mat, found := a.GetBlockMaterial(pos)
	require.True(t, found)
	assert.Equal(t, "dirt", mat.Name)
}

func TestScenario_CASDataMismatch(t *testing.T) {
	a, rec, _ := newTestAccess(t)
	pos := vec.Vec3{X: 5, Y: 5, Z: 5}

	ok, err := a.SetBlockIDAndData(pos, m1.ID, 3, NoFlags, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.CompareAndSetData(pos, block.NewState(m1.ID, 5), 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, block.NewState(m1.ID, 3), a.GetBlockState(pos))

	ok, err = a.CompareAndSetData(pos, block.NewState(m1.ID, 3), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, block.NewState(m1.ID, 7), a.GetBlockState(pos))

	scheduled, notified := rec.counts()
	assert.Zero(t, scheduled, "CAS не планирует физику")
	assert.Zero(t, notified, "CAS не уведомляет")
}

func TestScenario_InvalidCustomID(t *testing.T) {
	a, rec, _ := newTestAccess(t)
	pos := vec.Vec3{X: 1, Y: 1, Z: 1}

	ok, err := a.SetBlockID(pos, 5000, DefaultFlags, nil)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
	assert.Equal(t, block.DefaultState, a.GetBlockState(pos))

	scheduled, notified := rec.counts()
	assert.Zero(t, scheduled)
	assert.Zero(t, notified)
	assert.Equal(t, 0, a.Store().Stats().Sections, "отклонённая операция не трогает хранилище")
}

func TestCustomMaterial(t *testing.T) {
	a, _, reg := newTestAccess(t)
	pos := vec.Vec3{X: 2, Y: 0, Z: 0}

	custom, err := reg.RegisterCustom(&block.Material{Name: "crystal", DefaultData: 9})
	require.NoError(t, err)
	require.Equal(t, block.FirstCustomID, custom.ID)

	ok, err := a.SetBlockID(pos, custom.ID, NoFlags, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, block.NewState(custom.ID, 9), a.GetBlockState(pos))

	// Встроенный ID без материала допустим
	ok, err = a.SetBlockID(pos, block.ChestBlockID, NoFlags, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, block.NewState(block.ChestBlockID, 0), a.GetBlockState(pos))

	// Материал с незарегистрированным пользовательским ID
	ok, err = a.SetBlockMaterial(pos, &block.Material{ID: 999, Name: "ghost"}, NoFlags, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestInvalidArguments(t *testing.T) {
	a, _, _ := newTestAccess(t)
	pos := vec.Vec3{X: 3, Y: 3, Z: 3}
	_, _ = a.SetBlockMaterial(pos, m1, NoFlags, nil)
	cur := a.GetBlockState(pos)

	ok, err := a.SetBlockMaterial(pos, nil, DefaultFlags, nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err = a.CompareAndPut(pos, cur, "label", nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err = a.CompareAndPut(pos, cur, "", datatable.IntValue(1))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err = a.CompareAndRemove(pos, cur, "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	ok, err = a.CompareAndSetState(pos, cur, block.NewState(4000, 0))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.Equal(t, cur, a.GetBlockState(pos))
}

func TestSideEffects(t *testing.T) {
	a, rec, _ := newTestAccess(t)
	pos := vec.Vec3{X: 10, Y: 20, Z: 30}

	t.Run("физика и уведомление", func(t *testing.T) {
		ok, err := a.SetBlockMaterial(pos, m1, DefaultFlags, NamedSource("tick"))
		require.NoError(t, err)
		require.True(t, ok)

		rec.mu.Lock()
		defer rec.mu.Unlock()
		require.Len(t, rec.scheduled, 7, "блок и шесть соседей")
		assert.Equal(t, pos, rec.scheduled[0])
		for _, n := range pos.Neighbors() {
			assert.Contains(t, rec.scheduled, n)
		}
		require.Len(t, rec.changes, 1)
		assert.Equal(t, change{pos: pos, old: block.DefaultState, next: m1.State(), src: "tick"}, rec.changes[0])
	})

	t.Run("только уведомление", func(t *testing.T) {
		before, _ := rec.counts()
		ok, err := a.SetBlockData(pos, 4, Notify, nil)
		require.NoError(t, err)
		require.True(t, ok)

		scheduled, notified := rec.counts()
		assert.Equal(t, before, scheduled)
		assert.Equal(t, 2, notified)

		rec.mu.Lock()
		defer rec.mu.Unlock()
		assert.Equal(t, "unknown", rec.changes[1].src, "nil источник становится unknown")
		assert.Equal(t, m1.StateWithData(4), rec.changes[1].next)
	})

	t.Run("принудительная физика", func(t *testing.T) {
		before, notifiedBefore := rec.counts()
		a.UpdatePhysics(pos)
		scheduled, notified := rec.counts()
		assert.Equal(t, before+7, scheduled)
		assert.Equal(t, notifiedBefore, notified)
		assert.Equal(t, m1.StateWithData(4), a.GetBlockState(pos), "UpdatePhysics не меняет состояние")
	})
}

func TestDataSetAuxPolicy(t *testing.T) {
	label := datatable.StringValue("north")

	t.Run("безусловная смена под-данных очищает", func(t *testing.T) {
		a, _, _ := newTestAccess(t)
		pos := vec.Vec3{X: 0, Y: 1, Z: 0}
		ok, err := a.SetBlockIDAndData(pos, m1.ID, 1, NoFlags, nil)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = a.CompareAndPut(pos, m1.StateWithData(1), "k", label)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = a.SetBlockData(pos, 2, NoFlags, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, m1.StateWithData(2), a.GetBlockState(pos), "ID сохраняется")
		assert.Equal(t, 0, a.GetBlockAux(pos).Len(), "вспомогательные данные очищены")
	})

	t.Run("CAS под-данных сохраняет", func(t *testing.T) {
		a, _, _ := newTestAccess(t)
		pos := vec.Vec3{X: 0, Y: 2, Z: 0}
		_, _ = a.SetBlockMaterial(pos, m1, NoFlags, nil)
		_, _ = a.CompareAndPut(pos, m1.State(), "label", label)

		ok, err := a.CompareAndSetData(pos, m1.State(), 3)
		require.NoError(t, err)
		require.True(t, ok)
		v, found := a.GetBlockAuxValue(pos, "label")
		require.True(t, found)
		assert.Equal(t, label, v)

		ok, err = a.CompareAndSetState(pos, m1.StateWithData(3), m1.StateWithData(4))
		require.NoError(t, err)
		require.True(t, ok)
		_, found = a.GetBlockAuxValue(pos, "label")
		assert.True(t, found, "CAS состояния без смены ID сохраняет данные")

		ok, err = a.CompareAndSetState(pos, m1.StateWithData(4), m2.State())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0, a.GetBlockAux(pos).Len(), "смена ID через CAS очищает данные")
	})
}

func TestIdentitySetClearsExistingAux(t *testing.T) {
	label := datatable.StringValue("north")

	t.Run("SetBlockIDAndData", func(t *testing.T) {
		a, _, _ := newTestAccess(t)
		pos := vec.Vec3{X: 3, Y: 0, Z: 3}
		_, _ = a.SetBlockMaterial(pos, m1, NoFlags, nil)
		ok, err := a.CompareAndPut(pos, m1.State(), "label", label)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1, a.GetBlockAux(pos).Len())

		ok, err = a.SetBlockIDAndData(pos, m1.ID, 9, NoFlags, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, m1.StateWithData(9), a.GetBlockState(pos))
		assert.Equal(t, 0, a.GetBlockAux(pos).Len(), "установка ID и под-данных очищает данные")
	})

	t.Run("SetBlockMaterial", func(t *testing.T) {
		a, _, _ := newTestAccess(t)
		pos := vec.Vec3{X: 4, Y: 0, Z: 4}
		_, _ = a.SetBlockMaterial(pos, m2, NoFlags, nil)
		ok, err := a.CompareAndPut(pos, m2.State(), "label", label)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1, a.GetBlockAux(pos).Len())

		ok, err = a.SetBlockMaterial(pos, m2, NoFlags, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, m2.State(), a.GetBlockState(pos))
		assert.Equal(t, 0, a.GetBlockAux(pos).Len(), "установка материала очищает данные даже без смены ID")
	})
}

func TestCompareAndRemove(t *testing.T) {
	a, _, _ := newTestAccess(t)
	pos := vec.Vec3{X: 7, Y: 7, Z: 7}
	_, _ = a.SetBlockMaterial(pos, m1, NoFlags, nil)
	_, _ = a.CompareAndPut(pos, m1.State(), "a", datatable.IntValue(1))
	_, _ = a.CompareAndPut(pos, m1.State(), "b", datatable.IntValue(2))

	ok, err := a.CompareAndRemove(pos, m2.State(), "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.CompareAndRemove(pos, m1.State(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = a.CompareAndRemove(pos, m1.State(), "a")
	assert.True(t, ok, "повторное удаление успешно")

	assert.Equal(t, []string{"b"}, a.GetBlockAux(pos).Keys())
}

func TestCallerRetryLoop(t *testing.T) {
	a, _, _ := newTestAccess(t)
	pos := vec.Vec3{X: 0, Y: 64, Z: 0}
	_, _ = a.SetBlockMaterial(pos, m1, NoFlags, nil)

	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				cur := a.GetBlockState(pos)
				ok, err := a.CompareAndSetData(pos, cur, cur.Data+1)
				if err != nil {
					t.Error(err)
					return
				}
				if ok {
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, m1.StateWithData(workers), a.GetBlockState(pos))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(true, nil))
	assert.ErrorIs(t, Require(false, nil), ErrPreconditionFailed)
	assert.ErrorIs(t, Require(false, ErrInvalidArgument), ErrInvalidArgument)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	a, _, _ := newTestAccess(t, WithMetrics(m))
	pos := vec.Vec3{X: 1, Y: 2, Z: 3}

	_, _ = a.SetBlockMaterial(pos, m1, DefaultFlags, nil)
	_, _ = a.CompareAndSetData(pos, m2.State(), 1)
	_, _ = a.SetBlockID(pos, 6000, NoFlags, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("set_material", resultApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("cas_data", resultPreconditionFail)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("set_id", resultInvalidIdentifier)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.sideEffects.WithLabelValues("physics")))
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "physics|notify", DefaultFlags.String())
	assert.Equal(t, "none", NoFlags.String())
	assert.Equal(t, DefaultFlags, FlagsFromConfig(config.Default().Access))
	assert.Equal(t, Notify, FlagsFromConfig(config.AccessConfig{Notify: true}))
}
