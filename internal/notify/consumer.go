package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/blockaccess/internal/eventbus"
	"github.com/annel0/blockaccess/internal/logging"
)

// BatchHandler получает декодированный пакет изменений
type BatchHandler func(ctx context.Context, env *eventbus.Envelope, changes []BlockChange)

// Consumer слушает пакеты изменений блоков и декодирует их кодеком,
// указанным в метаданных конверта
type Consumer struct {
	sub     eventbus.Subscription
	handler BatchHandler

	mu     sync.Mutex
	codecs map[string]Codec

	log *logging.Logger
}

// NewConsumer подписывается на пакеты изменений. Пустой filter.Types
// заменяется на EventType.
func NewConsumer(ctx context.Context, bus eventbus.EventBus, filter eventbus.Filter, h BatchHandler) (*Consumer, error) {
	if h == nil {
		return nil, fmt.Errorf("обработчик пакетов не задан")
	}
	if len(filter.Types) == 0 {
		filter.Types = []string{EventType}
	}

	c := &Consumer{
		handler: h,
		codecs:  make(map[string]Codec),
		log:     logging.For(logging.Notify),
	}
	sub, err := bus.Subscribe(ctx, filter, c.handle)
	if err != nil {
		return nil, err
	}
	c.sub = sub
	return c, nil
}

func (c *Consumer) codec(name string) (Codec, error) {
	if name == "" {
		name = "json"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if codec, ok := c.codecs[name]; ok {
		return codec, nil
	}
	codec, err := CodecByName(name)
	if err != nil {
		return nil, err
	}
	c.codecs[name] = codec
	return codec, nil
}

// Decode декодирует конверт с пакетом изменений
func (c *Consumer) Decode(env *eventbus.Envelope) ([]BlockChange, error) {
	codec, err := c.codec(env.Metadata["codec"])
	if err != nil {
		return nil, err
	}
	return codec.Decode(env.Payload)
}

func (c *Consumer) handle(ctx context.Context, env *eventbus.Envelope) {
	c.log.Debug("пакет %s: %d байт от %s", env.ID, len(env.Payload), env.Source)

	changes, err := c.Decode(env)
	if err != nil {
		c.log.Warn("ошибка декодирования пакета %s: %v", env.ID, err)
		if c.log.Enabled(logging.TRACE) {
			c.log.Trace("содержимое пакета %s:\n%s", env.ID, logging.HexDump(env.Payload))
		}
		return
	}
	c.handler(ctx, env, changes)
}

// Stop отменяет подписку
func (c *Consumer) Stop() { c.sub.Unsubscribe() }
