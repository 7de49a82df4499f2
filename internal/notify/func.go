package notify

import (
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
)

// Func адаптер обычной функции к access.Notifier
type Func func(pos vec.Vec3, old, next block.FullState, src access.Source)

// Notify вызывает f
func (f Func) Notify(pos vec.Vec3, old, next block.FullState, src access.Source) {
	f(pos, old, next, src)
}

// Tee рассылает каждое уведомление всем получателям по порядку
func Tee(notifiers ...access.Notifier) access.Notifier {
	return Func(func(pos vec.Vec3, old, next block.FullState, src access.Source) {
		for _, n := range notifiers {
			n.Notify(pos, old, next, src)
		}
	})
}
