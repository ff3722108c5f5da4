package closer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Closer collects shutdown callbacks and runs them in reverse registration
// order, so dependencies close after their dependents.

type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

type namedFn struct {
	name string
	fn   func(ctx context.Context) error
}

type closer struct {
	mu     sync.Mutex
	fns    []namedFn
	logger Logger
}

var global = &closer{}

func SetLogger(l Logger) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.logger = l
}

// Add registers an anonymous shutdown callback.
func Add(fn func(ctx context.Context) error) {
	AddNamed("", fn)
}

// AddNamed registers a shutdown callback under a human-readable name.
func AddNamed(name string, fn func(ctx context.Context) error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.fns = append(global.fns, namedFn{name: name, fn: fn})
}

// CloseAll runs every registered callback in LIFO order. The first error is
// returned, but all callbacks still run.
func CloseAll(ctx context.Context) error {
	global.mu.Lock()
	fns := global.fns
	global.fns = nil
	logger := global.logger
	global.mu.Unlock()

	var firstErr error
	for i := len(fns) - 1; i >= 0; i-- {
		c := fns[i]
		if err := c.fn(ctx); err != nil {
			if logger != nil {
				logger.Error(ctx, "close failed", zap.String("name", c.name), zap.Error(err))
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if logger != nil && c.name != "" {
			logger.Info(ctx, "closed", zap.String("name", c.name))
		}
	}

	return firstErr
}
