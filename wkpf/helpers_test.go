package wkpf

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/reprog"
)

type memLocation struct {
	loc  []byte
	sets int
	err  error
}

func (m *memLocation) Location() []byte {
	return append([]byte(nil), m.loc...)
}

func (m *memLocation) SetLocation(loc []byte) error {
	m.sets++
	if m.err != nil {
		return m.err
	}
	m.loc = append([]byte(nil), loc...)

	return nil
}

type replyRecorder struct {
	msgs []Message
}

func (r *replyRecorder) reply(msg Message) {
	r.msgs = append(r.msgs, msg)
}

type testDispatcher struct {
	*Dispatcher
	loc     *memLocation
	commits []*reprog.Result
	reboots []uint32
}

func newTestDispatcher(t *testing.T) *testDispatcher {
	t.Helper()

	td := &testDispatcher{loc: &memLocation{}}
	td.Dispatcher = NewDispatcher(DispatcherConfig{
		Registry: NewRegistry(),
		Location: td.loc,
		OnCommit: func(_ uint32, res *reprog.Result) { td.commits = append(td.commits, res) },
		OnReboot: func(src uint32) { td.reboots = append(td.reboots, src) },
		Logger:   logger.NewSlogWriter(io.Discard, logger.DebugLevel, false),
	})

	return td
}

// call dispatches one request and returns its replies.
func (td *testDispatcher) call(op Opcode, seq uint16, body ...byte) []Message {
	var rec replyRecorder
	td.Dispatch(0, Message{Opcode: op, Seq: seq, Body: body}, rec.reply)

	return rec.msgs
}

// single dispatches one request and requires exactly one reply.
func (td *testDispatcher) single(t *testing.T, op Opcode, seq uint16, body ...byte) Message {
	t.Helper()

	replies := td.call(op, seq, body...)
	require.Len(t, replies, 1)

	return replies[0]
}
