package main

import (
	"os"
	"runtime"
	"time"

	"github.com/annel0/blockaccess/internal/logging"
	"github.com/annel0/blockaccess/internal/notify"
	"github.com/annel0/blockaccess/internal/physics"
	"github.com/annel0/blockaccess/internal/world/store"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// report выводит итоги нагрузки и использование ресурсов процессом
func report(r results, elapsed time.Duration, st store.Stats, q *physics.Queue, n *notify.BusNotifier) {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1
	}

	logging.Info("📊 Итоги за %s:", elapsed.Round(time.Millisecond))
	logging.Info("   CAS: применено %d (%.0f/с), повторов %d, отказов %d",
		r.casApplied, float64(r.casApplied)/seconds, r.casRetries, r.casGaveUp)
	logging.Info("   Aux: записано %d, удалено %d", r.auxPut, r.auxRemoved)
	logging.Info("   Песок: брошено %d, ошибок операций %d", r.drops, r.errors)
	logging.Info("   Хранилище: секций %d, блоков %d, aux %d, переходов %d",
		st.Sections, st.Written, st.AuxEntries, st.Transitions)
	logging.Info("   Физика: в очереди %d", q.Pending())
	logging.Info("   Уведомления: отправлено %d, отброшено %d", n.Published(), n.Dropped())

	cpuPercent, rssMB, err := processUsage()
	if err != nil {
		logging.Warn("Не удалось получить использование ресурсов: %v", err)
		return
	}
	logging.Info("   Процесс: CPU %.1f%%, RSS %.1f MB, горутин %d", cpuPercent, rssMB, runtime.NumGoroutine())
}

// processUsage возвращает загрузку CPU процессом и его резидентную память
func processUsage() (float64, float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, берём системную
		percents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(percents) == 0 {
			return 0, 0, err
		}
		cpuPercent = percents[0]
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return cpuPercent, 0, err
	}
	return cpuPercent, float64(mem.RSS) / 1024 / 1024, nil
}
