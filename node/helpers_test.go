package node

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-wkpf/identity"
	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/mptn"
	"github.com/arloliu/go-wkpf/wkpf"
)

const (
	testLocalHost = "10.0.0.5"
	testLocalAddr = uint32(0x0A000005)
	testLocalPort = 3000
	testAddress   = uint32(0x0A0B0C0D)
	testMasterSrc = mptn.MasterAddr
)

var errSendFailed = errors.New("send failed")

type fakeTransport struct {
	mu   sync.Mutex
	sent [][]byte
	err  error
}

func (tr *fakeTransport) Send(data []byte) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.err != nil {
		return tr.err
	}
	tr.sent = append(tr.sent, append([]byte(nil), data...))

	return nil
}

func (tr *fakeTransport) setErr(err error) {
	tr.mu.Lock()
	tr.err = err
	tr.mu.Unlock()
}

// frames decodes every datagram sent so far and clears the list.
func (tr *fakeTransport) frames(t *testing.T) []*mptn.Frame {
	t.Helper()

	tr.mu.Lock()
	sent := tr.sent
	tr.sent = nil
	tr.mu.Unlock()

	frames := make([]*mptn.Frame, 0, len(sent))
	for _, data := range sent {
		f, err := mptn.DecodeFrame(data)
		require.NoError(t, err)
		frames = append(frames, f)
	}

	return frames
}

func testLogger() logger.Logger {
	return logger.NewSlogWriter(io.Discard, logger.DebugLevel, false)
}

func testRegistry(t *testing.T) *wkpf.Registry {
	t.Helper()

	r := wkpf.NewRegistry()
	require.NoError(t, r.AddClass(wkpf.WuClass{ID: 1007, Name: "Magnetic"}))
	require.NoError(t, r.AddClass(wkpf.WuClass{ID: 1, Name: "Threshold"}))
	_, err := r.AddObject(1007)
	require.NoError(t, err)
	_, err = r.AddObject(1)
	require.NoError(t, err)

	return r
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeTransport, *identity.MemoryStore) {
	t.Helper()

	store := identity.NewMemoryStore()
	opts = append([]Option{WithIdentityStore(store), WithLogger(testLogger())}, opts...)
	cfg, err := NewConfig("127.0.0.1", testLocalHost, testLocalPort, opts...)
	require.NoError(t, err)

	tr := &fakeTransport{}
	s, err := NewSession(cfg, testRegistry(t), tr)
	require.NoError(t, err)

	return s, tr, store
}

func packFrame(t *testing.T, f *mptn.Frame) []byte {
	t.Helper()

	data, err := f.Pack()
	require.NoError(t, err)

	return data
}

// tunnelDatagram builds a gateway datagram carrying an MPTN packet.
func tunnelDatagram(t *testing.T, dest, src uint32, msgType mptn.MsgType, payload []byte) []byte {
	t.Helper()

	return packFrame(t, &mptn.Frame{
		Addr:    dest,
		Port:    mptn.GatewayUDPPort,
		Kind:    mptn.KindTunnel,
		Payload: mptn.Codec{}.EncodePacket(dest, src, msgType, payload),
	})
}

// operational drives a fresh session through the handshake.
func operational(t *testing.T, s *Session, tr *fakeTransport) {
	t.Helper()

	require.NoError(t, s.Start())
	s.HandleDatagram(packFrame(t, &mptn.Frame{NodeID: 7, Kind: mptn.KindRegister}))
	s.HandleDatagram(tunnelDatagram(t, testAddress, testMasterSrc, mptn.MsgIDAck, nil))
	require.Equal(t, Operational, s.State())
	tr.frames(t)
}

// command sends a WKPF request to an operational session and returns the decoded replies.
func command(t *testing.T, s *Session, tr *fakeTransport, src uint32, req wkpf.Message) []wkpf.Message {
	t.Helper()

	s.HandleDatagram(tunnelDatagram(t, testAddress, src, mptn.MsgForwardRequest, req.Encode()))

	var replies []wkpf.Message
	for _, f := range tr.frames(t) {
		require.Equal(t, mptn.KindTunnel, f.Kind)
		require.Equal(t, src, f.Addr)

		p, err := mptn.Codec{}.DecodePacket(f.Payload)
		require.NoError(t, err)
		require.Equal(t, src, p.Dest)
		require.Equal(t, testAddress, p.Src)
		require.Equal(t, mptn.MsgForwardRequest, p.Type)

		msg, err := wkpf.DecodeMessage(p.Payload)
		require.NoError(t, err)
		replies = append(replies, msg)
	}

	return replies
}
