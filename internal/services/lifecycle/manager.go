package lifecycle

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Hooks is a LIFO stack of named shutdown callbacks. Components register
// in start order and Close runs them newest first, so dependents stop
// before their dependencies: the write queue drains while the storage
// file is still open.
type Hooks struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	stack []entry
}

type entry struct {
	name string
	fn   func(ctx context.Context) error
}

func New(timeout time.Duration, logger *zap.Logger) *Hooks {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hooks{timeout: timeout, logger: logger}
}

// Defer pushes a shutdown callback onto the stack.
func (h *Hooks) Defer(name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack, entry{name: name, fn: fn})
}

// Close pops and runs every callback under the configured timeout. All
// callbacks run even when earlier ones fail; the errors are joined.
func (h *Hooks) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.Lock()
	stack := h.stack
	h.stack = nil
	h.mu.Unlock()

	var result error
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]
		if err := e.fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed", zap.String("component", e.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		h.logger.Info("component stopped", zap.String("component", e.name))
	}
	return result
}

// SignalContext returns a context cancelled on SIGTERM or SIGINT.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
}
