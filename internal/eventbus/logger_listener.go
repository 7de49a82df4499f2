package eventbus

import (
	"context"

	"github.com/annel0/blockaccess/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в стандартный лог.
// Функция неблокирующая.
// Возвращает подписку, чтобы слушателя можно было отключить.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB meta=%v", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload), ev.Metadata)
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
