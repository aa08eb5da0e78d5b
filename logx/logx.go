// Package logx provides the structured logging facade used across the
// codec, frame, and file-transfer packages. It wraps go.uber.org/zap behind
// a small surface so the hot decode path only ever touches one package-wide
// *zap.Logger: a zap production logger installed at package init, until the
// caller replaces it with Set.
package logx

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.Logger]

func init() {
	l, _ := zap.NewProduction()
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Set installs l as the package-wide logger. Passing nil installs a no-op
// logger. Until Set is called, L returns the zap production logger that
// package init installs; wiring a logger to a particular sink or format is
// left to the caller.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// L returns the current package-wide logger.
func L() *zap.Logger {
	return current.Load()
}

// Sync flushes any buffered log entries. Safe to call even when the
// installed logger doesn't support syncing to the given fd (errors are
// swallowed, matching the common zap.Sync() at program exit).
func Sync() {
	_ = L().Sync()
}
