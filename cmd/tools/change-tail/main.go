package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/annel0/blockaccess/internal/config"
	"github.com/annel0/blockaccess/internal/eventbus"
	"github.com/annel0/blockaccess/internal/notify"
)

const timeFormat = "2006-01-02T15:04:05.000Z"

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (default: BLOCKACCESS_CONFIG)")
		kind       = flag.String("bus", "", "Event bus kind override: jetstream, redis")
		url        = flag.String("url", "", "Event bus URL override")
		sources    = flag.String("sources", "", "Envelope sources filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N changes (0 = follow)")
		quiet      = flag.Bool("quiet", false, "Print batch summaries only")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *kind != "" {
		cfg.EventBus.Kind = *kind
	}
	if *url != "" {
		cfg.EventBus.URL = *url
	}
	if cfg.EventBus.Kind == "memory" {
		fmt.Println("❌ In-memory bus is process-local, use -bus jetstream or -bus redis")
		os.Exit(1)
	}

	bus, err := eventbus.New(cfg.EventBus)
	if err != nil {
		log.Fatalf("❌ Failed to connect to event bus: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var seen atomic.Int64
	filter := eventbus.Filter{Sources: parseStringList(*sources)}
	consumer, err := notify.NewConsumer(ctx, bus, filter, func(_ context.Context, env *eventbus.Envelope, changes []notify.BlockChange) {
		printBatch(env, changes, *quiet)
		if n := seen.Add(int64(len(changes))); *limit > 0 && n >= int64(*limit) {
			stop()
		}
	})
	if err != nil {
		log.Fatalf("❌ Failed to subscribe: %v", err)
	}
	defer consumer.Stop()

	fmt.Printf("🎬 Tailing %s on %s (%s)\n", notify.EventType, cfg.EventBus.Kind, cfg.EventBus.URL)
	<-ctx.Done()
	fmt.Printf("\n📊 Total changes: %d\n", seen.Load())
}

// printBatch выводит пакет изменений
func printBatch(env *eventbus.Envelope, changes []notify.BlockChange, quiet bool) {
	fmt.Printf("📦 %s %s from %s: %d changes (%s)\n",
		env.Timestamp.Format(timeFormat), env.ID, env.Source, len(changes), env.Metadata["codec"])
	if quiet {
		return
	}
	for _, c := range changes {
		fmt.Printf("   %-14s %s -> %s  [%s]\n", c.Pos(), c.Old, c.New, c.Source)
	}
}

// parseStringList разбирает строку со значениями через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
