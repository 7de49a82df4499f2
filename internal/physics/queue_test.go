package physics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collect struct {
	mu  sync.Mutex
	got []vec.Vec3
}

func (c *collect) Process(_ context.Context, pos vec.Vec3) {
	c.mu.Lock()
	c.got = append(c.got, pos)
	c.mu.Unlock()
}

func (c *collect) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestQueue_Deduplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	q := NewQueue(config.PhysicsConfig{TickMillis: 10}, WithMetrics(m))

	pos := vec.Vec3{X: 1, Y: 2, Z: 3}
	q.Schedule(pos)
	q.Schedule(pos)
	q.Schedule(vec.Vec3{X: 1, Y: 1, Z: 3})
	assert.Equal(t, 2, q.Pending())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dedupedTotal))

	c := &collect{}
	n := q.Drain(context.Background(), c)
	assert.Equal(t, 2, n)
	assert.Equal(t, []vec.Vec3{{X: 1, Y: 1, Z: 3}, pos}, c.got, "обработка идёт снизу вверх")
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.processedTotal))

	assert.Equal(t, 0, q.Drain(context.Background(), c), "пустая очередь")
}

func TestQueue_MaxBatch(t *testing.T) {
	q := NewQueue(config.PhysicsConfig{TickMillis: 10, MaxBatch: 3})
	for y := 0; y < 5; y++ {
		q.Schedule(vec.Vec3{Y: y})
	}

	c := &collect{}
	assert.Equal(t, 3, q.Drain(context.Background(), c))
	assert.Equal(t, 2, q.Pending(), "остаток переходит на следующий тик")
	assert.Equal(t, 2, q.Drain(context.Background(), c))
}

func TestQueue_ScheduleDuringDrain(t *testing.T) {
	q := NewQueue(config.PhysicsConfig{TickMillis: 10})
	q.Schedule(vec.Vec3{})

	h := HandlerFunc(func(_ context.Context, pos vec.Vec3) {
		// Обработчик снова планирует ту же координату
		q.Schedule(pos)
	})
	assert.Equal(t, 1, q.Drain(context.Background(), h))
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_Run(t *testing.T) {
	q := NewQueue(config.PhysicsConfig{TickMillis: 5})
	c := &collect{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx, c)
		close(done)
	}()

	for i := 0; i < 10; i++ {
		q.Schedule(vec.Vec3{X: i})
	}

	assert.Eventually(t, func() bool { return c.len() == 10 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

func TestMaterialPhysics(t *testing.T) {
	reg := block.NewRegistry()
	require.NoError(t, reg.Register(&block.Material{ID: block.StoneBlockID, Name: "stone", Solid: true}))

	// Песок падает на одну клетку вниз, если под ним воздух
	falling := block.PhysicsFunc(func(api block.BlockAPI, pos vec.Vec3, state block.FullState) {
		below := pos.Add(vec.Vec3{Y: -1})
		if !api.GetBlockState(below).IsAir() {
			return
		}
		if ok, _ := api.CompareAndSetState(pos, state, block.DefaultState); !ok {
			return
		}
		if ok, _ := api.CompareAndSetState(below, block.DefaultState, state); ok {
			api.NotifyChange(below, block.DefaultState, state)
			api.UpdatePhysics(below)
		}
	})
	require.NoError(t, reg.Register(&block.Material{ID: block.SandBlockID, Name: "sand", Solid: true, Physics: falling}))

	q := NewQueue(config.PhysicsConfig{TickMillis: 10})
	acc := access.New(store.New(), reg, access.WithPhysics(q))
	handler := NewMaterialPhysics(acc, reg)

	ground := vec.Vec3{X: 0, Y: 0, Z: 0}
	sand := vec.Vec3{X: 0, Y: 3, Z: 0}
	_, err := acc.SetBlockID(ground, block.StoneBlockID, access.NoFlags, nil)
	require.NoError(t, err)
	_, err = acc.SetBlockID(sand, block.SandBlockID, access.DefaultFlags, nil)
	require.NoError(t, err)

	for i := 0; i < 10 && q.Pending() > 0; i++ {
		q.Drain(context.Background(), handler)
	}

	assert.Equal(t, block.SandBlockID, acc.GetBlockState(vec.Vec3{X: 0, Y: 1, Z: 0}).ID, "песок должен упасть на камень")
	assert.True(t, acc.GetBlockState(sand).IsAir())
	assert.Equal(t, 0, q.Pending())
}
