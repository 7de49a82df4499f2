package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
// Незаданные поля получают значения из Default.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Access    AccessConfig    `yaml:"access"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Notify    NotifyConfig    `yaml:"notify"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Materials MaterialsConfig `yaml:"materials"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // Пусто: только консоль
}

// AccessConfig настройки фасада изменения блоков
type AccessConfig struct {
	// Флаги для вызовов без явных флагов: обновлять физику и уведомлять
	UpdatePhysics bool `yaml:"update_physics"`
	Notify        bool `yaml:"notify"`
}

type PhysicsConfig struct {
	TickMillis int `yaml:"tick_ms"`
	MaxBatch   int `yaml:"max_batch"` // 0: без ограничения
}

// TickInterval возвращает период обработки очереди физики
func (p PhysicsConfig) TickInterval() time.Duration {
	return time.Duration(p.TickMillis) * time.Millisecond
}

type NotifyConfig struct {
	BatchSize     int    `yaml:"batch_size"`
	FlushMillis   int    `yaml:"flush_ms"`
	BufferSize    int    `yaml:"buffer_size"`
	Format        string `yaml:"format"` // json | cbor
	UseCompressor bool   `yaml:"use_zstd_compression"`
	Source        string `yaml:"source"` // Имя узла в конвертах
}

// FlushInterval возвращает максимальную задержку отправки пакета изменений
func (n NotifyConfig) FlushInterval() time.Duration {
	return time.Duration(n.FlushMillis) * time.Millisecond
}

type EventBusConfig struct {
	Kind      string `yaml:"kind"` // memory | jetstream | redis
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

// GetPort возвращает порт метрик с поддержкой fallback значений
func (m *MetricsConfig) GetPort() int {
	return getIntWithEnvFallback(m.Port, "BLOCKACCESS_METRICS_PORT", 2112)
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"` // Пусто: OTEL_EXPORTER_OTLP_ENDPOINT или localhost:4318
}

type MaterialsConfig struct {
	Path string `yaml:"path"` // YAML с пользовательскими материалами
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO"},
		Access: AccessConfig{
			UpdatePhysics: true,
			Notify:        true,
		},
		Physics: PhysicsConfig{
			TickMillis: 50,
			MaxBatch:   4096,
		},
		Notify: NotifyConfig{
			BatchSize:     100,
			FlushMillis:   200,
			BufferSize:    10000,
			Format:        "json",
			UseCompressor: true,
			Source:        "blockaccess",
		},
		EventBus: EventBusConfig{
			Kind:      "memory",
			Stream:    "BLOCKS",
			Retention: 24,
			Buffer:    1024,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "blockaccess",
		},
	}
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configVal > 0 {
		return configVal
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultVal
}

// Load читает YAML файл конфигурации поверх Default.
// Если path == "", пытается прочитать из ENV BLOCKACCESS_CONFIG или возвращает Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BLOCKACCESS_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан: использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch c.EventBus.Kind {
	case "memory", "jetstream", "redis":
	default:
		return fmt.Errorf("неизвестный тип шины событий %q", c.EventBus.Kind)
	}
	if c.EventBus.Kind != "memory" && c.EventBus.URL == "" {
		return fmt.Errorf("для шины %s требуется eventbus.url", c.EventBus.Kind)
	}
	if c.Physics.TickMillis <= 0 {
		return fmt.Errorf("physics.tick_ms должен быть больше 0")
	}
	if c.Notify.Format != "json" && c.Notify.Format != "cbor" {
		return fmt.Errorf("неизвестный формат уведомлений %q", c.Notify.Format)
	}
	if c.Notify.BatchSize <= 0 || c.Notify.FlushMillis <= 0 {
		return fmt.Errorf("notify.batch_size и notify.flush_ms должны быть больше 0")
	}
	return nil
}
