package tds

import (
	"sync"

	"go.uber.org/zap"
)

var (
	nop     *zap.Logger
	nopOnce sync.Once
)

// nopLogger returns the shared no-op logger used when no logger is
// injected via WithLogger.
func nopLogger() *zap.Logger {
	nopOnce.Do(func() {
		nop = zap.NewNop()
	})
	return nop
}
