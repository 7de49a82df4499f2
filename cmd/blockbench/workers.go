package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/block/implementations"
	"github.com/annel0/blockaccess/internal/world/datatable"
)

// Сколько раз писатель повторяет CAS, прежде чем сдаться
const maxRetries = 16

// results счётчики одного или всех писателей
type results struct {
	casApplied uint64
	casRetries uint64
	casGaveUp  uint64
	auxPut     uint64
	auxRemoved uint64
	drops      uint64
	errors     uint64
}

func (r *results) add(o results) {
	r.casApplied += o.casApplied
	r.casRetries += o.casRetries
	r.casGaveUp += o.casGaveUp
	r.auxPut += o.auxPut
	r.auxRemoved += o.auxRemoved
	r.drops += o.drops
	r.errors += o.errors
}

// runWorkers запускает n писателей и ждёт их завершения по ctx
func runWorkers(ctx context.Context, acc *access.Access, a *area, n int, seed int64) results {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total results
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := &worker{
				acc:  acc,
				area: a,
				rnd:  rand.New(rand.NewSource(seed + int64(id))),
				src:  access.NamedSource(fmt.Sprintf("bench-%d", id)),
			}
			r := w.run(ctx)

			mu.Lock()
			total.add(r)
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	return total
}

type worker struct {
	acc  *access.Access
	area *area
	rnd  *rand.Rand
	src  access.NamedSource
	res  results
}

func (w *worker) run(ctx context.Context) results {
	for ctx.Err() == nil {
		x, z := w.area.random(w.rnd)
		top := w.area.surface(x, z)

		switch w.rnd.Intn(4) {
		case 0, 1:
			w.increment(top)
		case 2:
			w.touchAux(top)
		default:
			w.dropSand(top.Add(vec.Vec3{Y: amplitude}))
		}
	}
	return w.res
}

// increment увеличивает под-данные блока через цикл CAS
func (w *worker) increment(pos vec.Vec3) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		current := w.acc.GetBlockState(pos)
		ok, err := w.acc.CompareAndSetData(pos, current, current.Data+1)
		if err != nil {
			w.res.errors++
			logging.Debug("%s: CAS %v: %v", w.src, pos, err)
			return
		}
		if ok {
			w.res.casApplied++
			return
		}
		w.res.casRetries++
	}
	w.res.casGaveUp++
}

// touchAux записывает и удаляет метку владельца в таблице блока
func (w *worker) touchAux(pos vec.Vec3) {
	current := w.acc.GetBlockState(pos)
	ok, err := w.acc.CompareAndPut(pos, current, "owner", datatable.StringValue(w.src))
	if err != nil {
		w.res.errors++
		return
	}
	if !ok {
		w.res.casRetries++
		return
	}
	w.res.auxPut++

	if ok, err := w.acc.CompareAndRemove(pos, current, "owner"); err == nil && ok {
		w.res.auxRemoved++
	}
}

// dropSand ставит песок в воздухе; дальше он падает через очередь физики
func (w *worker) dropSand(pos vec.Vec3) {
	if w.acc.GetBlockState(pos).ID != block.AirBlockID {
		return
	}
	ok, err := w.acc.SetBlockMaterial(pos, implementations.Sand, access.DefaultFlags, w.src)
	if err != nil {
		w.res.errors++
		return
	}
	if ok {
		w.res.drops++
	}
}
