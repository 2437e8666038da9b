package node

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-wkpf/identity"
	"github.com/arloliu/go-wkpf/mptn"
	"github.com/arloliu/go-wkpf/wkpf"
)

// fakeGateway is a loopback UDP peer playing the gateway and master.
type fakeGateway struct {
	t    *testing.T
	conn *net.UDPConn
	node *net.UDPAddr
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &fakeGateway{t: t, conn: conn}
}

func (gw *fakeGateway) port() int {
	return gw.conn.LocalAddr().(*net.UDPAddr).Port
}

func (gw *fakeGateway) recv() *mptn.Frame {
	gw.t.Helper()

	buf := make([]byte, 2048)
	require.NoError(gw.t, gw.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, from, err := gw.conn.ReadFromUDP(buf)
	require.NoError(gw.t, err)
	gw.node = from

	f, err := mptn.DecodeFrame(buf[:n])
	require.NoError(gw.t, err)

	return f
}

func (gw *fakeGateway) send(data []byte) {
	gw.t.Helper()

	_, err := gw.conn.WriteToUDP(data, gw.node)
	require.NoError(gw.t, err)
}

func newTestEndpoint(t *testing.T, gw *fakeGateway) *Endpoint {
	t.Helper()

	cfg, err := NewConfig("127.0.0.1", "127.0.0.1", 0,
		WithGatewayPort(gw.port()),
		WithIdentityStore(identity.NewMemoryStore()),
		WithLogger(testLogger()),
		WithCloseTimeout(2*time.Second),
	)
	require.NoError(t, err)

	ep, err := NewEndpoint(context.Background(), cfg, testRegistry(t))
	require.NoError(t, err)

	return ep
}

func TestEndpoint_HandshakeAndCommand(t *testing.T) {
	gw := newFakeGateway(t)
	ep := newTestEndpoint(t, gw)
	defer ep.Close()

	require.NoError(t, ep.Open(false))
	require.NotNil(t, ep.LocalAddr())

	probe := gw.recv()
	assert.Equal(t, mptn.KindRegister, probe.Kind)
	assert.Equal(t, uint32(0x7F000001), probe.Addr)
	assert.Equal(t, uint16(ep.LocalAddr().Port), probe.Port)

	gw.send(packFrame(t, &mptn.Frame{NodeID: 4, Kind: mptn.KindRegister}))

	ack := gw.recv()
	assert.Equal(t, uint8(4), ack.NodeID)
	idReq := gw.recv()
	p, err := mptn.Codec{}.DecodePacket(idReq.Payload)
	require.NoError(t, err)
	assert.Equal(t, mptn.MsgIDRequest, p.Type)

	gw.send(tunnelDatagram(t, testAddress, mptn.MasterAddr, mptn.MsgIDAck, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ep.Session().WaitState(ctx, Operational))
	assert.Equal(t, testAddress, ep.Session().Address())

	req := wkpf.Message{Opcode: wkpf.OpGetLocation, Seq: 99, Body: []byte{0}}
	gw.send(tunnelDatagram(t, testAddress, mptn.MasterAddr, mptn.MsgForwardRequest, req.Encode()))

	replyFrame := gw.recv()
	p, err = mptn.Codec{}.DecodePacket(replyFrame.Payload)
	require.NoError(t, err)
	reply, err := wkpf.DecodeMessage(p.Payload)
	require.NoError(t, err)
	assert.Equal(t, wkpf.OpGetLocationR, reply.Opcode)
	assert.Equal(t, uint16(99), reply.Seq)
	assert.Equal(t, append([]byte{byte(len(identity.DefaultLocation))}, identity.DefaultLocation...), reply.Body)

	assert.GreaterOrEqual(t, ep.Metrics().DatagramSendCount.Load(), uint64(3))
	assert.Equal(t, uint64(3), ep.Metrics().DatagramRecvCount.Load())

	require.NoError(t, ep.Close())
	assert.Nil(t, ep.LocalAddr())
}

func TestEndpoint_OpenTwice(t *testing.T) {
	gw := newFakeGateway(t)
	ep := newTestEndpoint(t, gw)
	defer ep.Close()

	require.NoError(t, ep.Open(false))
	require.ErrorIs(t, ep.Open(false), ErrAlreadyOpen)
}

func TestEndpoint_SendBeforeOpen(t *testing.T) {
	gw := newFakeGateway(t)
	ep := newTestEndpoint(t, gw)

	require.ErrorIs(t, ep.Send([]byte{1}), ErrNotOpen)
	require.NoError(t, ep.Close())
}

func TestEndpoint_ReopenAfterClose(t *testing.T) {
	gw := newFakeGateway(t)
	ep := newTestEndpoint(t, gw)

	require.NoError(t, ep.Open(false))
	gw.recv()
	require.NoError(t, ep.Close())

	require.NoError(t, ep.Open(false))
	probe := gw.recv()
	assert.Equal(t, mptn.KindRegister, probe.Kind)
	require.NoError(t, ep.Close())
}

func TestEndpoint_OpenWaitCancelledByClose(t *testing.T) {
	gw := newFakeGateway(t)
	ep := newTestEndpoint(t, gw)

	done := make(chan error, 1)
	go func() {
		done <- ep.Open(true)
	}()

	gw.recv()
	require.NoError(t, ep.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Open did not return after Close")
	}
}
