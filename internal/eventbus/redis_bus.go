package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/annel0/blockaccess/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisBus реализует EventBus поверх Redis Pub/Sub.
// Доставка без подтверждений: подписчик, не подключённый в момент
// публикации, сообщение не получит.
type RedisBus struct {
	client    *redis.Client
	prefix    string
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewRedisBus подключается к Redis по URL вида redis://host:6379/0.
// Каналы называются <prefix>.<type>.
func NewRedisBus(url, prefix string) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	if prefix == "" {
		prefix = "blocks"
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{client: rdb, prefix: strings.ToLower(prefix)}, nil
}

func (rb *RedisBus) channel(eventType string) string {
	return fmt.Sprintf("%s.%s", rb.prefix, eventType)
}

// Publish сериализует Envelope в JSON и публикует в канал <prefix>.<type>.
func (rb *RedisBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		atomic.AddUint64(&rb.dropped, 1)
		return err
	}
	if err := rb.client.Publish(ctx, rb.channel(ev.EventType), data).Err(); err != nil {
		atomic.AddUint64(&rb.dropped, 1)
		return err
	}
	atomic.AddUint64(&rb.published, 1)
	return nil
}

// Subscribe подписывается на канал одного типа или на шаблон <prefix>.*
func (rb *RedisBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	var ps *redis.PubSub
	if len(f.Types) == 1 {
		ps = rb.client.Subscribe(ctx, rb.channel(f.Types[0]))
	} else {
		ps = rb.client.PSubscribe(ctx, rb.prefix+".*")
	}

	// Дожидаемся подтверждения подписки
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		for msg := range ps.Channel() {
			var ev Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logging.Warn("RedisBus: некорректное сообщение в %s: %v", msg.Channel, err)
				continue
			}
			if !matchFilter(&ev, f) {
				continue
			}
			h(ctx, &ev)
			atomic.AddUint64(&rb.consumed, 1)
		}
	}()

	return &redisSub{ps: ps}, nil
}

type redisSub struct {
	ps *redis.PubSub
}

func (r *redisSub) Unsubscribe() {
	_ = r.ps.Close()
}

// Metrics возвращает текущие метрики.
func (rb *RedisBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&rb.published),
		Consumed:  atomic.LoadUint64(&rb.consumed),
		Dropped:   atomic.LoadUint64(&rb.dropped),
	}
}

// Close закрывает клиент Redis.
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}
