package node

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-wkpf/logger"
)

// SessionState is the registration state of a node session.
type SessionState uint32

const (
	// Unregistered is the state before Start.
	Unregistered SessionState = iota
	// AwaitingNodeID indicates a registration probe was sent and the gateway's
	// node id assignment is pending.
	AwaitingNodeID
	// AwaitingAddress indicates an ID request was sent and the master's IDACK is pending.
	AwaitingAddress
	// Operational indicates the session has a network address and serves WKPF commands.
	Operational
)

// String returns string representation of the state.
func (s SessionState) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case AwaitingNodeID:
		return "awaiting-node-id"
	case AwaitingAddress:
		return "awaiting-address"
	case Operational:
		return "operational"
	default:
		return "unknown"
	}
}

// StateChangeHandler is invoked on every session state change.
//
// Note: the handler runs on the goroutine that changed the state, usually the
// endpoint's receive loop. Take care with long-running implementations.
type StateChangeHandler func(prevState SessionState, newState SessionState)

// stateMgr holds the session state and wakes waiters on change.
type stateMgr struct {
	mu       sync.Mutex
	cond     *sync.Cond
	state    atomic.Uint32
	handlers []StateChangeHandler
	logger   logger.Logger
}

func newStateMgr(l logger.Logger) *stateMgr {
	sm := &stateMgr{logger: l}
	sm.cond = sync.NewCond(&sm.mu)
	sm.state.Store(uint32(Unregistered))

	return sm
}

func (sm *stateMgr) State() SessionState {
	return SessionState(sm.state.Load())
}

func (sm *stateMgr) addHandler(handlers ...StateChangeHandler) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.handlers = append(sm.handlers, handlers...)
}

// to changes the state and invokes the handlers. It is a no-op if the state is unchanged.
func (sm *stateMgr) to(newState SessionState) {
	sm.mu.Lock()
	prevState := sm.State()
	if prevState == newState {
		sm.mu.Unlock()
		return
	}
	sm.state.Store(uint32(newState))
	sm.cond.Broadcast()
	handlers := append([]StateChangeHandler(nil), sm.handlers...)
	sm.mu.Unlock()

	sm.logger.Debug("session state changed", "prev", prevState.String(), "new", newState.String())
	for _, h := range handlers {
		if h != nil {
			h(prevState, newState)
		}
	}
}

// waitState blocks until the state equals state or ctx is done.
func (sm *stateMgr) waitState(ctx context.Context, state SessionState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.State() == state {
		return nil
	}

	stop := context.AfterFunc(ctx, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		sm.cond.Broadcast()
	})
	defer stop()

	for sm.State() != state {
		if err := ctx.Err(); err != nil {
			return err
		}
		sm.cond.Wait()
	}

	return nil
}
