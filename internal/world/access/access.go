// Package access содержит фасад изменения блоков: операции, которые вызывают
// тики мира, применение сетевых обновлений и игровая логика.
//
// Каждая операция сводится к одному атомарному переходу в store.Store.
// Побочные эффекты (планирование физики и уведомления) запускаются только
// после успешного перехода и вне критической секции хранилища.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/vec"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/datatable"
	"github.com/annel0/blockaccess/internal/world/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Flags управляют побочными эффектами безусловных изменений
type Flags uint8

const (
	// UpdatePhysics планирует физику для блока и шести соседей
	UpdatePhysics Flags = 1 << iota
	// Notify отправляет уведомление об изменении
	Notify
)

const (
	NoFlags      Flags = 0
	DefaultFlags       = UpdatePhysics | Notify
)

// Has проверяет наличие флага
func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

// String возвращает строковое представление флагов
func (f Flags) String() string {
	var parts []string
	if f.Has(UpdatePhysics) {
		parts = append(parts, "physics")
	}
	if f.Has(Notify) {
		parts = append(parts, "notify")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// FlagsFromConfig возвращает флаги по умолчанию из конфигурации
func FlagsFromConfig(cfg config.AccessConfig) Flags {
	f := NoFlags
	if cfg.UpdatePhysics {
		f |= UpdatePhysics
	}
	if cfg.Notify {
		f |= Notify
	}
	return f
}

// Source описывает инициатора изменения
type Source interface {
	String() string
}

// NamedSource источник, заданный именем
type NamedSource string

func (s NamedSource) String() string { return string(s) }

var (
	UnknownSource = NamedSource("unknown")
	PhysicsSource = NamedSource("physics")
)

func sourceOf(src Source) Source {
	if src == nil {
		return UnknownSource
	}
	return src
}

// Resolver разрешает ID блока в материал. Реализуется block.Registry.
type Resolver interface {
	Resolve(id block.BlockID) (*block.Material, bool)
}

// Scheduler принимает координаты для пересчёта физики.
// Schedule не должен блокироваться.
type Scheduler interface {
	Schedule(pos vec.Vec3)
}

// Notifier получает уведомления о применённых изменениях.
// Notify не должен блокироваться.
type Notifier interface {
	Notify(pos vec.Vec3, old, next block.FullState, src Source)
}

type nopScheduler struct{}

func (nopScheduler) Schedule(vec.Vec3) {}

type nopNotifier struct{}

func (nopNotifier) Notify(vec.Vec3, block.FullState, block.FullState, Source) {}

// Option настраивает Access
type Option func(*Access)

// WithPhysics задаёт планировщик физики
func WithPhysics(s Scheduler) Option {
	return func(a *Access) {
		if s != nil {
			a.physics = s
		}
	}
}

// WithNotifier задаёт получателя уведомлений
func WithNotifier(n Notifier) Option {
	return func(a *Access) {
		if n != nil {
			a.notifier = n
		}
	}
}

// WithMetrics включает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(a *Access) { a.metrics = m }
}

// WithConfig задаёт настройки фасада
func WithConfig(cfg config.AccessConfig) Option {
	return func(a *Access) { a.cfg = cfg }
}

// WithTracer задаёт трассировщик OpenTelemetry
func WithTracer(t trace.Tracer) Option {
	return func(a *Access) {
		if t != nil {
			a.tracer = t
		}
	}
}

// Access фасад изменения блоков. Безопасен для одновременного использования.
type Access struct {
	store    *store.Store
	registry Resolver
	physics  Scheduler
	notifier Notifier
	metrics  *Metrics
	tracer   trace.Tracer
	cfg      config.AccessConfig
	log      *logging.Logger
}

var _ block.BlockAPI = (*Access)(nil)

// New создаёт фасад над хранилищем. Если registry == nil, используется
// глобальный реестр материалов.
func New(st *store.Store, registry Resolver, opts ...Option) *Access {
	if registry == nil {
		registry = block.Default()
	}

	a := &Access{
		store:    st,
		registry: registry,
		physics:  nopScheduler{},
		notifier: nopNotifier{},
		tracer:   otel.Tracer("github.com/annel0/blockaccess/internal/world/access"),
		cfg:      config.Default().Access,
		log:      logging.For(logging.Access),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Defaults возвращает флаги, заданные в конфигурации
func (a *Access) Defaults() Flags {
	return FlagsFromConfig(a.cfg)
}

// Store возвращает хранилище, над которым работает фасад
func (a *Access) Store() *store.Store {
	return a.store
}

// resolveID проверяет ID и возвращает его материал, если он зарегистрирован.
// Встроенный ID без материала допустим, пользовательский недопустим.
func (a *Access) resolveID(id block.BlockID) (*block.Material, error) {
	if m, ok := a.registry.Resolve(id); ok {
		return m, nil
	}
	if id.IsBuiltin() {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %d не зарегистрирован", ErrInvalidIdentifier, id)
}

func (a *Access) reject(op string, pos vec.Vec3, err error) (bool, error) {
	a.log.Debug("%s %s отклонено: %v", op, pos, err)
	a.metrics.observe(op, false, err)
	return false, err
}

// apply выполняет переход и, при успехе, побочные эффекты согласно flags
func (a *Access) apply(op string, pos vec.Vec3, fn store.Transition, clearAux bool, flags Flags, src Source) bool {
	_, span := a.tracer.Start(context.Background(), "access."+op,
		trace.WithAttributes(
			attribute.String("block.pos", pos.String()),
			attribute.String("access.flags", flags.String()),
		))
	defer span.End()

	old, next, ok := a.store.Update(pos, fn, clearAux)
	span.SetAttributes(attribute.Bool("access.applied", ok))
	a.metrics.observe(op, ok, nil)
	if !ok {
		return false
	}

	if flags.Has(UpdatePhysics) {
		a.schedulePhysics(pos)
	}
	if flags.Has(Notify) {
		a.notifier.Notify(pos, old, next, sourceOf(src))
		a.metrics.sideEffect("notify", 1)
	}
	return true
}

func (a *Access) schedulePhysics(pos vec.Vec3) {
	a.physics.Schedule(pos)
	for _, n := range pos.Neighbors() {
		a.physics.Schedule(n)
	}
	a.metrics.sideEffect("physics", 7)
}

func set(state block.FullState) store.Transition {
	return func(block.FullState) (block.FullState, bool) {
		return state, true
	}
}

// SetBlockMaterial безусловно устанавливает материал с его данными по умолчанию.
// Вспомогательные данные очищаются.
func (a *Access) SetBlockMaterial(pos vec.Vec3, m *block.Material, flags Flags, src Source) (bool, error) {
	const op = "set_material"
	if m == nil {
		return a.reject(op, pos, fmt.Errorf("%w: материал не задан", ErrInvalidArgument))
	}
	if _, err := a.resolveID(m.ID); err != nil {
		return a.reject(op, pos, err)
	}
	return a.apply(op, pos, set(m.State()), true, flags, src), nil
}

// SetBlockID безусловно устанавливает ID; под-данные сбрасываются к значению
// по умолчанию материала, вспомогательные данные очищаются.
func (a *Access) SetBlockID(pos vec.Vec3, id block.BlockID, flags Flags, src Source) (bool, error) {
	const op = "set_id"
	m, err := a.resolveID(id)
	if err != nil {
		return a.reject(op, pos, err)
	}

	state := block.NewState(id, 0)
	if m != nil {
		state = m.State()
	}
	return a.apply(op, pos, set(state), true, flags, src), nil
}

// SetBlockIDAndData безусловно устанавливает ID и под-данные.
// Вспомогательные данные очищаются.
func (a *Access) SetBlockIDAndData(pos vec.Vec3, id block.BlockID, data uint16, flags Flags, src Source) (bool, error) {
	const op = "set_id_data"
	if _, err := a.resolveID(id); err != nil {
		return a.reject(op, pos, err)
	}
	return a.apply(op, pos, set(block.NewState(id, data)), true, flags, src), nil
}

// SetBlockData безусловно меняет под-данные, сохраняя ID.
// Вспомогательные данные очищаются.
func (a *Access) SetBlockData(pos vec.Vec3, data uint16, flags Flags, src Source) (bool, error) {
	fn := func(cur block.FullState) (block.FullState, bool) {
		return cur.WithData(data), true
	}
	return a.apply("set_data", pos, fn, true, flags, src), nil
}

// CompareAndSetData меняет под-данные, если текущее состояние равно expect.
// Вспомогательные данные сохраняются. Физика и уведомления не запускаются.
func (a *Access) CompareAndSetData(pos vec.Vec3, expect block.FullState, data uint16) (bool, error) {
	_, _, ok := a.store.Update(pos, store.Expect(expect, expect.WithData(data)), false)
	a.metrics.observe("cas_data", ok, nil)
	return ok, nil
}

// CompareAndSetState заменяет состояние целиком, если текущее равно expect.
// Вспомогательные данные очищаются только при смене ID. Физика и уведомления
// не запускаются.
func (a *Access) CompareAndSetState(pos vec.Vec3, expect, next block.FullState) (bool, error) {
	const op = "cas_state"
	if _, err := a.resolveID(next.ID); err != nil {
		return a.reject(op, pos, err)
	}

	_, _, ok := a.store.Update(pos, store.Expect(expect, next), next.ID != expect.ID)
	a.metrics.observe(op, ok, nil)
	return ok, nil
}

// CompareAndPut добавляет или перезаписывает вспомогательное значение,
// если текущее состояние равно expect
func (a *Access) CompareAndPut(pos vec.Vec3, expect block.FullState, key string, value datatable.Value) (bool, error) {
	const op = "cas_put"
	if !datatable.ValidKey(key) {
		return a.reject(op, pos, fmt.Errorf("%w: ключ %q", ErrInvalidArgument, key))
	}
	if value == nil {
		return a.reject(op, pos, fmt.Errorf("%w: значение для ключа %q не задано", ErrInvalidArgument, key))
	}

	ok := a.store.CompareAndPutAux(pos, expect, key, value)
	a.metrics.observe(op, ok, nil)
	return ok, nil
}

// CompareAndRemove удаляет вспомогательное значение, если текущее состояние
// равно expect. Отсутствие ключа при совпадении считается успехом.
func (a *Access) CompareAndRemove(pos vec.Vec3, expect block.FullState, key string) (bool, error) {
	const op = "cas_remove"
	if !datatable.ValidKey(key) {
		return a.reject(op, pos, fmt.Errorf("%w: ключ %q", ErrInvalidArgument, key))
	}

	ok := a.store.CompareAndRemoveAux(pos, expect, key)
	a.metrics.observe(op, ok, nil)
	return ok, nil
}

// UpdatePhysics планирует физику блока и шести соседей без изменения состояния
func (a *Access) UpdatePhysics(pos vec.Vec3) {
	a.schedulePhysics(pos)
}

// NotifyChange отправляет уведомление об изменении, сделанном обработчиком физики
func (a *Access) NotifyChange(pos vec.Vec3, old, next block.FullState) {
	a.notifier.Notify(pos, old, next, PhysicsSource)
	a.metrics.sideEffect("notify", 1)
}

// GetBlockState возвращает текущее состояние блока
func (a *Access) GetBlockState(pos vec.Vec3) block.FullState {
	return a.store.Read(pos)
}

// GetBlockMaterial возвращает материал блока, если его ID зарегистрирован
func (a *Access) GetBlockMaterial(pos vec.Vec3) (*block.Material, bool) {
	return a.registry.Resolve(a.store.Read(pos).ID)
}

// GetBlockAux возвращает копию вспомогательных данных блока
func (a *Access) GetBlockAux(pos vec.Vec3) datatable.Map {
	return a.store.ReadAux(pos)
}

// GetBlockAuxValue возвращает одно вспомогательное значение
func (a *Access) GetBlockAuxValue(pos vec.Vec3, key string) (datatable.Value, bool) {
	return a.store.GetAux(pos, key)
}
