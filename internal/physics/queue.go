package physics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/vec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Handler обрабатывает одну координату, извлечённую из очереди
type Handler interface {
	Process(ctx context.Context, pos vec.Vec3)
}

// HandlerFunc адаптер обычной функции к Handler
type HandlerFunc func(ctx context.Context, pos vec.Vec3)

// Process вызывает f
func (f HandlerFunc) Process(ctx context.Context, pos vec.Vec3) {
	f(ctx, pos)
}

// Option настраивает Queue
type Option func(*Queue)

// WithMetrics включает Prometheus-метрики очереди
func WithMetrics(m *Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// WithTracer задаёт трассировщик для спанов обработки тика
func WithTracer(t trace.Tracer) Option {
	return func(q *Queue) {
		if t != nil {
			q.tracer = t
		}
	}
}

// Queue множество координат, ожидающих пересчёта физики.
// Повторное планирование уже ожидающей координаты ничего не добавляет.
// Schedule только вставляет в множество и никогда не ждёт обработки.
type Queue struct {
	mu      sync.Mutex
	pending map[vec.Vec3]struct{}
	tickID  uint64

	interval time.Duration
	maxBatch int

	metrics *Metrics
	tracer  trace.Tracer
	log     *logging.Logger
}

// NewQueue создаёт очередь с параметрами из конфигурации
func NewQueue(cfg config.PhysicsConfig, opts ...Option) *Queue {
	interval := cfg.TickInterval()
	if interval <= 0 {
		interval = time.Second / 20
	}

	q := &Queue{
		pending:  make(map[vec.Vec3]struct{}),
		interval: interval,
		maxBatch: cfg.MaxBatch,
		tracer:   otel.Tracer("github.com/annel0/blockaccess/internal/physics"),
		log:      logging.For(logging.Physics),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Schedule добавляет координату в очередь
func (q *Queue) Schedule(pos vec.Vec3) {
	q.mu.Lock()
	_, exists := q.pending[pos]
	if !exists {
		q.pending[pos] = struct{}{}
	}
	n := len(q.pending)
	q.mu.Unlock()

	q.metrics.scheduled(!exists, n)
}

// Pending возвращает количество ожидающих координат
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// take извлекает до maxBatch координат снизу вверх
func (q *Queue) take() (uint64, []vec.Vec3) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tickID++
	if len(q.pending) == 0 {
		return q.tickID, nil
	}

	batch := make([]vec.Vec3, 0, len(q.pending))
	for pos := range q.pending {
		batch = append(batch, pos)
	}
	sort.Slice(batch, func(i, j int) bool {
		a, b := batch[i], batch[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})

	if q.maxBatch > 0 && len(batch) > q.maxBatch {
		batch = batch[:q.maxBatch]
	}
	for _, pos := range batch {
		delete(q.pending, pos)
	}
	return q.tickID, batch
}

// Drain обрабатывает один тик: извлекает накопленные координаты и передаёт
// их h. Координаты, запланированные во время обработки, попадут в следующий тик.
// Возвращает количество обработанных координат.
func (q *Queue) Drain(ctx context.Context, h Handler) int {
	tickID, batch := q.take()
	if len(batch) == 0 {
		return 0
	}

	ctx, span := q.tracer.Start(ctx, "physics.tick", trace.WithAttributes(
		attribute.Int64("physics.tick_id", int64(tickID)),
		attribute.Int("physics.batch", len(batch)),
	))
	defer span.End()

	start := time.Now()
	for _, pos := range batch {
		h.Process(ctx, pos)
	}

	q.metrics.processed(len(batch), q.Pending(), time.Since(start))
	q.log.Trace("тик %d: обработано %d координат", tickID, len(batch))
	return len(batch)
}

// Run обрабатывает очередь каждый интервал, пока ctx не отменён
func (q *Queue) Run(ctx context.Context, h Handler) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	q.log.Info("⚙️ Очередь физики запущена (тик %v, пакет %d)", q.interval, q.maxBatch)
	for {
		select {
		case <-ctx.Done():
			q.log.Info("Очередь физики остановлена, ожидало %d координат", q.Pending())
			return
		case <-ticker.C:
			q.Drain(ctx, h)
		}
	}
}
