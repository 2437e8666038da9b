// Package task manages the goroutines owned by a tunnel endpoint.
//
// The endpoint runs a single receive loop; Manager gives it a cancellable
// lifecycle, panic protection and a way to wait for termination on close.
//
// Example Usage:
//
//	mgr := task.NewManager(ctx, logger)
//	_ = mgr.Start("recvLoop", func() bool {
//	    // ... handle one datagram ...
//	    return true // keep running
//	})
//	mgr.Stop()
//	mgr.Wait()
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-wkpf/logger"
)

// startTimeout bounds how long Start waits for a goroutine to report that it is running.
const startTimeout = 5 * time.Second

// ErrStopped is returned by Start after Stop has been called and before Wait returns.
var ErrStopped = errors.New("task: manager stopped")

// Func is one iteration of a task loop. It returns false to end the task.
type Func func() bool

// Manager runs named task loops until they return false or the manager is stopped.
type Manager struct {
	pctx   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	mu     sync.RWMutex // protects ctx and cancel
}

// NewManager creates a Manager whose tasks end when ctx is done.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	mgr := &Manager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context cancelled by Stop.
func (mgr *Manager) Context() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Start runs fn repeatedly in a new goroutine until it returns false, it panics
// or the manager is stopped. It returns once the goroutine is running.
func (mgr *Manager) Start(name string, fn Func) error {
	ctx := mgr.Context()
	if ctx.Err() != nil {
		return fmt.Errorf("%w: cannot start %s", ErrStopped, name)
	}

	mgr.logger.Debug("start task", "name", name)

	started := make(chan struct{})
	mgr.wg.Add(1)
	go func() {
		defer mgr.wg.Done()

		mgr.count.Add(1)
		close(started)

		defer func() {
			mgr.count.Add(-1)
			mgr.logger.Debug("task terminated", "name", name, "task_count", mgr.Count())
		}()

		mgr.runLoop(ctx, name, fn)
	}()

	select {
	case <-started:
		return nil
	case <-time.After(startTimeout):
		return fmt.Errorf("task: timeout waiting for %s to start", name)
	}
}

// Stop signals every running task to end.
func (mgr *Manager) Stop() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.cancel != nil {
		mgr.cancel()
	}
}

// Wait blocks until every task has ended and re-arms the manager so tasks can
// be started again.
func (mgr *Manager) Wait() {
	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

// Count returns the number of running tasks.
func (mgr *Manager) Count() int {
	return int(mgr.count.Load())
}

func (mgr *Manager) runLoop(ctx context.Context, name string, fn Func) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task loop", "name", name, "panic", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if !fn() {
				return
			}
		}
	}
}
