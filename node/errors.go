package node

import "errors"

var (
	// ErrNotOpen is returned when sending through an endpoint that is not open.
	ErrNotOpen = errors.New("node: endpoint not open")
	// ErrAlreadyOpen is returned by Open on an endpoint that is already open.
	ErrAlreadyOpen = errors.New("node: endpoint already open")
	// ErrCloseTimeout is returned by Close when the receive loop does not stop in time.
	ErrCloseTimeout = errors.New("node: close endpoint timeout")
)
