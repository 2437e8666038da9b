package reprog

import "errors"

var (
	// ErrNoTransfer indicates a WRITE or COMMIT without a preceding OPEN.
	ErrNoTransfer = errors.New("reprog: no open transfer")
	// ErrWriteOverrun indicates a chunk that would extend past the buffer capacity.
	ErrWriteOverrun = errors.New("reprog: write exceeds transfer capacity")
	// ErrSectionOverrun indicates a section header or body extending past the filled length.
	ErrSectionOverrun = errors.New("reprog: section overruns transfer")
	// ErrMalformedSection indicates a section body inconsistent with its own counts or offsets.
	ErrMalformedSection = errors.New("reprog: malformed section")
)
