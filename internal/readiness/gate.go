package readiness

import (
	"context"
	"sync"
	"time"
)

// Gate is a one-shot latch: initially closed, opened exactly once, and safe
// to wait on from any number of goroutines before or after it opens.
type Gate struct {
	mu       sync.RWMutex
	open     bool
	err      error
	waitChan chan struct{}
}

func NewGate() *Gate {
	return &Gate{
		waitChan: make(chan struct{}),
	}
}

// Open releases every current and future waiter. The first call wins;
// subsequent calls are no-ops. A non-nil err is handed to all waiters.
func (g *Gate) Open(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open {
		return
	}

	g.open = true
	g.err = err
	close(g.waitChan)
}

func (g *Gate) IsOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.open
}

// Wait blocks until the gate opens or the context is done. After the gate
// has opened it returns immediately with the error the gate was opened with.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.RLock()
	if g.open {
		err := g.err
		g.mu.RUnlock()
		return err
	}
	g.mu.RUnlock()

	select {
	case <-g.waitChan:
		g.mu.RLock()
		defer g.mu.RUnlock()
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) WaitTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return g.Wait(ctx)
}
