package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/eventbus"
	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/notify"
	"github.com/annel0/blockaccess/internal/observability"
	"github.com/annel0/blockaccess/internal/physics"
	"github.com/annel0/blockaccess/internal/world/access"
	"github.com/annel0/blockaccess/internal/world/block"
	"github.com/annel0/blockaccess/internal/world/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации (по умолчанию BLOCKACCESS_CONFIG)")
		workers    = flag.Int("workers", 8, "Количество конкурирующих писателей")
		duration   = flag.Duration("duration", 10*time.Second, "Длительность нагрузки")
		radius     = flag.Int("radius", 32, "Половина стороны участка ландшафта")
		seed       = flag.Int64("seed", 1, "Сид ландшафта и генераторов")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Configure(cfg.Logging.Dir, level)
	if err := logging.InitDefaultLogger("blockbench"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("Телеметрия отключена: %v", err)
	} else {
		defer shutdownTelemetry(context.Background())
	}

	registry := block.Default()
	if cfg.Materials.Path != "" {
		custom, err := registry.LoadMaterials(cfg.Materials.Path)
		if err != nil && !os.IsNotExist(err) {
			logging.Error("❌ Ошибка загрузки материалов: %v", err)
			os.Exit(1)
		}
		logging.Info("Загружено пользовательских материалов: %d", len(custom))
	}

	bus, err := eventbus.New(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка создания шины событий: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	if level <= logging.DEBUG {
		if sub, err := eventbus.StartLoggingListener(bus); err == nil {
			defer sub.Unsubscribe()
		}
	}

	exporter := eventbus.NewMetricsExporter(bus, nil)
	exporter.StartHTTP(fmt.Sprintf(":%d", cfg.Metrics.GetPort()))
	defer exporter.Stop()

	codec, err := notify.NewCodec(cfg.Notify.Format, cfg.Notify.UseCompressor)
	if err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	notifier := notify.NewBusNotifier(bus, cfg.Notify, codec)
	defer notifier.Stop()

	queue := physics.NewQueue(cfg.Physics, physics.WithMetrics(physics.NewMetrics(nil)))

	st := store.New()
	acc := access.New(st, registry,
		access.WithConfig(cfg.Access),
		access.WithPhysics(queue),
		access.WithNotifier(notifier),
		access.WithMetrics(access.NewMetrics(nil)),
	)

	handler := physics.NewMaterialPhysics(acc, registry)
	go queue.Run(ctx, handler)

	// === НАГРУЗКА ===

	area := newArea(*radius, *seed)
	seeded := area.seed(acc)
	logging.Info("🌍 Ландшафт: %d блоков, участок %dx%d", seeded, 2*(*radius), 2*(*radius))

	benchCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	started := time.Now()
	results := runWorkers(benchCtx, acc, area, *workers, *seed)
	elapsed := time.Since(started)

	// Даём физике и уведомлениям догнать изменения
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 2*time.Second)
	for queue.Pending() > 0 && drainCtx.Err() == nil {
		queue.Drain(drainCtx, handler)
	}
	drainCancel()
	if _, err := notifier.Flush(context.Background()); err != nil {
		logging.Warn("Не удалось отправить остаток уведомлений: %v", err)
	}

	report(results, elapsed, st.Stats(), queue, notifier)
	logging.Info("👋 Нагрузка завершена")
}
