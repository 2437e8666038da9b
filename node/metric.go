package node

import "sync/atomic"

// EndpointMetrics contains atomic counters of a node endpoint.
// Metrics can be used as the value of a prometheus CounterFunc.
type EndpointMetrics struct {
	// DatagramRecvCount indicates the number of datagrams received.
	DatagramRecvCount atomic.Uint64
	// DatagramSendCount indicates the number of datagrams sent.
	DatagramSendCount atomic.Uint64
	// FramingErrCount indicates the number of datagrams dropped for bad framing.
	FramingErrCount atomic.Uint64
	// SendErrCount indicates the number of failed sends.
	SendErrCount atomic.Uint64
	// CommandCount indicates the number of WKPF commands dispatched.
	CommandCount atomic.Uint64
	// ErrorReplyCount indicates the number of ERROR_R responses sent.
	ErrorReplyCount atomic.Uint64
	// CommitCount indicates the number of reprogramming transfers committed.
	CommitCount atomic.Uint64
}

func (m *EndpointMetrics) incDatagramRecvCount() {
	m.DatagramRecvCount.Add(1)
}

func (m *EndpointMetrics) incDatagramSendCount() {
	m.DatagramSendCount.Add(1)
}

func (m *EndpointMetrics) incFramingErrCount() {
	m.FramingErrCount.Add(1)
}

func (m *EndpointMetrics) incSendErrCount() {
	m.SendErrCount.Add(1)
}

func (m *EndpointMetrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *EndpointMetrics) incErrorReplyCount() {
	m.ErrorReplyCount.Add(1)
}

func (m *EndpointMetrics) incCommitCount() {
	m.CommitCount.Add(1)
}
