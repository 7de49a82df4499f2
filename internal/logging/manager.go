package logging

import (
	"fmt"
	"sync"
)

// Component имя подсистемы, для которой ведётся отдельный лог
type Component string

const (
	Access  Component = "access"
	Physics Component = "physics"
	Notify  Component = "notify"
)

// registry логгеры компонентов, по одному на имя
type registry struct {
	mu      sync.Mutex
	loggers map[Component]*Logger
}

var components = &registry{loggers: make(map[Component]*Logger)}

// For возвращает логгер компонента, создавая его при первом обращении.
// Если файл лога создать не удалось, компонент пишет только в консоль.
func For(c Component) *Logger {
	components.mu.Lock()
	defer components.mu.Unlock()

	if l, ok := components.loggers[c]; ok {
		return l
	}

	l, err := NewLogger(string(c))
	if err != nil {
		Warn("лог компонента %s только в консоль: %v", c, err)
		l = &Logger{
			component:       string(c),
			consoleLogger:   defaultLogger.consoleLogger,
			minConsoleLevel: defaultLogger.minConsoleLevel,
			minFileLevel:    ERROR,
		}
	}
	components.loggers[c] = l
	return l
}

// SetLevel меняет пороги уже созданного логгера компонента
func SetLevel(c Component, console, file LogLevel) error {
	components.mu.Lock()
	l, ok := components.loggers[c]
	components.mu.Unlock()
	if !ok {
		return fmt.Errorf("логгер компонента %s не создан", c)
	}

	l.mu.Lock()
	l.minConsoleLevel = console
	l.minFileLevel = file
	l.mu.Unlock()
	return nil
}

// CloseAll закрывает файлы всех логгеров компонентов.
// Следующий вызов For создаст логгер заново.
func CloseAll() error {
	components.mu.Lock()
	defer components.mu.Unlock()

	var lastErr error
	for c, l := range components.loggers {
		if err := l.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие лога %s: %w", c, err)
		}
	}
	components.loggers = make(map[Component]*Logger)
	return lastErr
}
