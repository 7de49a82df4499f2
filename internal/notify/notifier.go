package notify

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/eventbus"
	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusNotifier накапливает изменения блоков и отправляет их пакетами через EventBus.
// Notify только добавляет запись в буфер; отправка идёт в отдельной горутине
// по таймеру или при наборе пакета.
type BusNotifier struct {
	mu       sync.Mutex
	buf      []BlockChange
	capacity int

	batchSize  int
	flushEvery time.Duration
	bus        eventbus.EventBus
	source     string
	codec      Codec

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once

	dropped   atomic.Uint64
	published atomic.Uint64

	tracer trace.Tracer
	log    *logging.Logger
}

var _ access.Notifier = (*BusNotifier)(nil)

// NewBusNotifier создаёт и запускает отправителя пакетов
func NewBusNotifier(bus eventbus.EventBus, cfg config.NotifyConfig, codec Codec) *BusNotifier {
	if codec == nil {
		codec = NewJSONCodec()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	capacity := cfg.BufferSize
	if capacity < batchSize {
		capacity = batchSize
	}
	flushEvery := cfg.FlushInterval()
	if flushEvery <= 0 {
		flushEvery = 200 * time.Millisecond
	}
	source := cfg.Source
	if source == "" {
		source = "blockaccess"
	}

	bn := &BusNotifier{
		buf:        make([]BlockChange, 0, batchSize),
		capacity:   capacity,
		batchSize:  batchSize,
		flushEvery: flushEvery,
		bus:        bus,
		source:     source,
		codec:      codec,
		kick:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		tracer:     otel.Tracer("github.com/annel0/blockaccess/internal/notify"),
		log:        logging.For(logging.Notify),
	}
	go bn.loop()
	return bn
}

// Notify добавляет изменение в буфер. При переполнении вытесняется изменение
// с меньшим приоритетом, а если таких нет, новое отбрасывается.
func (bn *BusNotifier) Notify(pos vec.Vec3, old, next block.FullState, src access.Source) {
	name := access.UnknownSource.String()
	if src != nil {
		name = src.String()
	}
	ch := NewBlockChange(pos, old, next, name)

	bn.mu.Lock()
	if len(bn.buf) >= bn.capacity {
		// ищем самое низкое Priority и заменяем, если новый выше.
		lowIdx := -1
		lowPri := ch.Priority
		for i, c := range bn.buf {
			if c.Priority < lowPri {
				lowPri = c.Priority
				lowIdx = i
			}
		}
		if lowIdx >= 0 {
			bn.buf[lowIdx] = ch
		}
		bn.dropped.Add(1)
	} else {
		bn.buf = append(bn.buf, ch)
	}
	full := len(bn.buf) >= bn.batchSize
	bn.mu.Unlock()

	if full {
		select {
		case bn.kick <- struct{}{}:
		default:
		}
	}
}

// Dropped возвращает количество вытесненных или отброшенных изменений
func (bn *BusNotifier) Dropped() uint64 {
	return bn.dropped.Load()
}

// Published возвращает количество отправленных изменений
func (bn *BusNotifier) Published() uint64 {
	return bn.published.Load()
}

func (bn *BusNotifier) loop() {
	ticker := time.NewTicker(bn.flushEvery)
	defer ticker.Stop()
	defer close(bn.done)

	for {
		select {
		case <-ticker.C:
			bn.flushAll()
		case <-bn.kick:
			bn.flushAll()
		case <-bn.quit:
			bn.flushAll()
			return
		}
	}
}

func (bn *BusNotifier) flushAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		n, err := bn.Flush(ctx)
		if err != nil || n < bn.batchSize {
			return
		}
	}
}

// Flush отправляет не более batchSize накопленных изменений одним конвертом.
// Возвращает количество отправленных изменений.
func (bn *BusNotifier) Flush(ctx context.Context) (int, error) {
	bn.mu.Lock()
	if len(bn.buf) == 0 {
		bn.mu.Unlock()
		return 0, nil
	}
	n := len(bn.buf)
	if n > bn.batchSize {
		n = bn.batchSize
	}
	changes := make([]BlockChange, n)
	copy(changes, bn.buf[:n])
	bn.buf = append(bn.buf[:0], bn.buf[n:]...)
	bn.mu.Unlock()

	ctx, span := bn.tracer.Start(ctx, "notify.flush", trace.WithAttributes(
		attribute.Int("notify.changes", n),
		attribute.String("notify.codec", bn.codec.Name()),
	))
	defer span.End()

	payload, err := bn.codec.Encode(changes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode")
		bn.log.Warn("ошибка кодирования пакета изменений: %v", err)
		bn.dropped.Add(uint64(n))
		return 0, err
	}

	env := &eventbus.Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    bn.source,
		EventType: EventType,
		Version:   1,
		Priority:  maxPriority(changes),
		Payload:   payload,
		Metadata: map[string]string{
			"codec": bn.codec.Name(),
			"count": strconv.Itoa(n),
		},
	}
	if err := bn.bus.Publish(ctx, env); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish")
		bn.log.Warn("ошибка публикации пакета изменений: %v", err)
		bn.dropped.Add(uint64(n))
		return 0, err
	}

	bn.published.Add(uint64(n))
	bn.log.Trace("отправлено %d изменений (%d байт)", n, len(payload))
	return n, nil
}

// Stop завершает работу и отправляет оставшиеся изменения
func (bn *BusNotifier) Stop() {
	bn.once.Do(func() {
		close(bn.quit)
		<-bn.done
	})
}

func maxPriority(changes []BlockChange) int {
	p := 0
	for _, c := range changes {
		if c.Priority > p {
			p = c.Priority
		}
	}
	return p
}
