package eventbus

import (
	"fmt"
	"time"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/logging"
)

// New создаёт шину по конфигурации: memory, jetstream или redis
func New(cfg config.EventBusConfig) (EventBus, error) {
	switch cfg.Kind {
	case "", "memory":
		logging.Info("🚌 EventBus: in-memory (буфер %d)", cfg.Buffer)
		return NewMemoryBus(cfg.Buffer), nil
	case "jetstream":
		bus, err := NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
		if err != nil {
			return nil, err
		}
		logging.Info("🚌 EventBus: NATS JetStream %s, stream=%s", cfg.URL, cfg.Stream)
		return bus, nil
	case "redis":
		bus, err := NewRedisBus(cfg.URL, cfg.Stream)
		if err != nil {
			return nil, err
		}
		logging.Info("🚌 EventBus: Redis Pub/Sub %s", cfg.URL)
		return bus, nil
	default:
		return nil, fmt.Errorf("неизвестный тип шины событий %q", cfg.Kind)
	}
}
