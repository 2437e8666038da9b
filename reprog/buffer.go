package reprog

import "fmt"

// DefaultCapacity is the transfer buffer capacity announced in OPEN responses.
const DefaultCapacity = 1024

// TransferBuffer is a fixed-capacity byte buffer filled by positioned writes.
//
// Filled is the high-water mark of all accepted writes. Positions below it that
// were never written read as zero.
type TransferBuffer struct {
	data   []byte
	filled int
}

// NewTransferBuffer allocates a zeroed buffer of the given capacity.
func NewTransferBuffer(capacity int) *TransferBuffer {
	return &TransferBuffer{data: make([]byte, capacity)}
}

// Cap returns the buffer capacity.
func (b *TransferBuffer) Cap() int {
	return len(b.data)
}

// Filled returns the high-water length.
func (b *TransferBuffer) Filled() int {
	return b.filled
}

// Bytes returns the filled prefix of the buffer. The slice aliases the buffer.
func (b *TransferBuffer) Bytes() []byte {
	return b.data[:b.filled]
}

// Write copies chunk at pos. A chunk extending past the capacity is rejected with
// ErrWriteOverrun and the buffer is left untouched.
func (b *TransferBuffer) Write(pos int, chunk []byte) error {
	end := pos + len(chunk)
	if pos < 0 || end > len(b.data) {
		return fmt.Errorf("%w: [%d, %d) capacity %d", ErrWriteOverrun, pos, end, len(b.data))
	}

	copy(b.data[pos:end], chunk)
	if end > b.filled {
		b.filled = end
	}

	return nil
}
