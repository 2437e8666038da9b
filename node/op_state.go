package node

import "sync/atomic"

type opState uint32

const (
	closedState opState = iota
	closingState
	openingState
	openedState
)

// atomicOpState tracks the endpoint lifecycle.
type atomicOpState struct {
	state atomic.Uint32
}

func (st *atomicOpState) String() string {
	switch st.get() {
	case closedState:
		return "closed"
	case closingState:
		return "closing"
	case openingState:
		return "opening"
	case openedState:
		return "opened"
	default:
		return "unknown"
	}
}

func (st *atomicOpState) get() opState {
	return opState(st.state.Load())
}

func (st *atomicOpState) set(state opState) {
	st.state.Store(uint32(state))
}

func (st *atomicOpState) isOpened() bool {
	return st.get() == openedState
}

func (st *atomicOpState) toOpening() bool {
	return st.state.CompareAndSwap(uint32(closedState), uint32(openingState))
}

func (st *atomicOpState) toOpened() bool {
	return st.state.CompareAndSwap(uint32(openingState), uint32(openedState))
}

// toClosing moves an opening or opened endpoint to closing.
func (st *atomicOpState) toClosing() bool {
	return st.state.CompareAndSwap(uint32(openedState), uint32(closingState)) ||
		st.state.CompareAndSwap(uint32(openingState), uint32(closingState))
}
