package reprog

// Engine tracks the transfer buffer of one session.
//
// Engine is not safe for concurrent use; it is owned by the goroutine handling
// the session's datagrams.
type Engine struct {
	capacity int
	buf      *TransferBuffer
}

// NewEngine creates an engine whose transfers use the given capacity.
// A non-positive capacity selects DefaultCapacity.
func NewEngine(capacity int) *Engine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Engine{capacity: capacity}
}

// Capacity returns the capacity of buffers allocated by Open.
func (e *Engine) Capacity() int {
	return e.capacity
}

// Active reports whether a transfer is open.
func (e *Engine) Active() bool {
	return e.buf != nil
}

// Open discards any in-flight transfer and starts a new one.
func (e *Engine) Open() int {
	e.buf = NewTransferBuffer(e.capacity)
	return e.capacity
}

// Write stores chunk at pos in the open transfer.
func (e *Engine) Write(pos int, chunk []byte) error {
	if e.buf == nil {
		return ErrNoTransfer
	}

	return e.buf.Write(pos, chunk)
}

// Filled returns the filled length of the open transfer, or 0.
func (e *Engine) Filled() int {
	if e.buf == nil {
		return 0
	}

	return e.buf.Filled()
}

// Commit parses the open transfer and drops it.
//
// The returned error is ErrNoTransfer when nothing is open; parse failures are
// reported in Result.Err.
func (e *Engine) Commit() (*Result, error) {
	if e.buf == nil {
		return nil, ErrNoTransfer
	}

	buf := e.buf
	e.buf = nil

	return ParseSections(buf.Bytes()), nil
}
