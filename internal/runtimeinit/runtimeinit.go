// Package runtimeinit tunes the Go runtime for the ledger's sustained
// batch-processing workload. The processor and its concurrent producers are
// CPU-bound; under a cgroup quota the default GOMAXPROCS (the host's logical
// CPU count) oversubscribes the scheduler, so this corrects it once at
// startup.
package runtimeinit

import (
	"fmt"
	"sync"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/RomainGratier/prod-testing-bc/log"
)

var once sync.Once

// Init sets GOMAXPROCS from the enclosing cgroup CPU quota, if any. It is
// idempotent and safe to call from multiple goroutines; only the first call
// has any effect.
func Init() {
	once.Do(func() {
		undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			log.Debug("runtime tuning", "msg", fmt.Sprintf(format, args...))
		}))
		if err != nil {
			log.Warn("failed to set GOMAXPROCS from cgroup quota", "err", err)
			return
		}
		_ = undo // the ledger runs for the process lifetime; never reverted.
	})
}
