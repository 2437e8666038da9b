package node

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/arloliu/go-wkpf/identity"
	"github.com/arloliu/go-wkpf/internal/util"
	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/mptn"
	"github.com/arloliu/go-wkpf/reprog"
	"github.com/arloliu/go-wkpf/wkpf"
)

// nodeIDAck is forwarded to the master after the gateway assigns a node id.
var nodeIDAck = []byte("AAAA")

// Transport sends a datagram to the gateway.
type Transport interface {
	Send(data []byte) error
}

// Session is the node side of the tunnel protocol: the registration handshake
// and the WKPF command service.
//
// HandleDatagram must be called from a single goroutine. State, WaitState and
// the accessors are safe for concurrent use.
type Session struct {
	cfg        *Config
	transport  Transport
	codec      TunnelCodec
	keeper     *identity.Keeper
	dispatcher *wkpf.Dispatcher
	stateMgr   *stateMgr
	logger     logger.Logger
	metrics    *EndpointMetrics

	localPort atomic.Uint32
	address   atomic.Uint32
}

// NewSession creates a session that sends through transport.
//
// The identity is loaded from the configured store, falling back to a fresh one.
func NewSession(cfg *Config, registry *wkpf.Registry, transport Transport) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("node: config is nil")
	}
	if registry == nil {
		return nil, errors.New("node: registry is nil")
	}
	if transport == nil {
		return nil, errors.New("node: transport is nil")
	}

	l := cfg.logger.With("component", "session")
	s := &Session{
		cfg:       cfg,
		transport: transport,
		codec:     cfg.codec,
		keeper:    identity.NewKeeper(cfg.identityStore, l),
		stateMgr:  newStateMgr(l),
		logger:    l,
		metrics:   &EndpointMetrics{},
	}
	s.localPort.Store(uint32(cfg.localPort)) //nolint:gosec

	s.dispatcher = wkpf.NewDispatcher(wkpf.DispatcherConfig{
		Registry:         registry,
		Location:         s.keeper,
		TransferCapacity: cfg.transferCapacity,
		OnCommit:         s.onCommit,
		OnReboot:         cfg.onReboot,
		Logger:           cfg.logger,
	})

	return s, nil
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.stateMgr.State()
}

// WaitState blocks until the session reaches state or ctx is done.
func (s *Session) WaitState(ctx context.Context, state SessionState) error {
	return s.stateMgr.waitState(ctx, state)
}

// AddStateHandler registers handlers invoked on every state change.
func (s *Session) AddStateHandler(handlers ...StateChangeHandler) {
	s.stateMgr.addHandler(handlers...)
}

// Address returns the network address assigned by the master, valid once Operational.
func (s *Session) Address() uint32 {
	return s.address.Load()
}

// Identity returns the node identity keeper.
func (s *Session) Identity() *identity.Keeper {
	return s.keeper
}

// Registry returns the node's class and object registry.
func (s *Session) Registry() *wkpf.Registry {
	return s.dispatcher.Registry()
}

// LastCommit returns the most recent reprogramming result, or nil.
func (s *Session) LastCommit() *reprog.Result {
	return s.dispatcher.LastCommit()
}

// Metrics returns the session counters.
func (s *Session) Metrics() *EndpointMetrics {
	return s.metrics
}

// Start sends a registration probe and waits for the gateway's node id.
//
// The session enters AwaitingNodeID before the probe leaves, so a reply handled
// on the receive goroutine is never seen in the Unregistered state. A failed
// send returns the session to Unregistered. Calling Start again restarts the
// handshake.
func (s *Session) Start() error {
	s.address.Store(0)
	s.stateMgr.to(AwaitingNodeID)

	f := &mptn.Frame{
		NodeID: s.keeper.NodeID(),
		Addr:   s.cfg.localAddr,
		Port:   uint16(s.localPort.Load()), //nolint:gosec
		Kind:   mptn.KindRegister,
	}
	if err := s.sendFrame(f); err != nil {
		s.stateMgr.to(Unregistered)
		return err
	}

	s.logger.Info("registration probe sent",
		"local", mptn.AddrToString(s.cfg.localAddr), "port", f.Port, "uuid", s.keeper.UUID())

	return nil
}

// setLocalPort updates the port announced to the gateway, used when an
// ephemeral port was bound.
func (s *Session) setLocalPort(port int) {
	s.localPort.Store(uint32(port)) //nolint:gosec
}

// HandleDatagram processes one datagram received from the gateway.
func (s *Session) HandleDatagram(data []byte) {
	s.metrics.incDatagramRecvCount()

	state := s.State()
	s.logger.Debug("datagram received", "state", state.String(), "data", util.HexDump(data))

	frame, err := mptn.DecodeFrame(data)
	if err != nil {
		s.metrics.incFramingErrCount()
		s.logger.Debug("datagram dropped", "state", state.String(), "error", err)

		return
	}

	switch state {
	case AwaitingNodeID:
		s.handleNodeID(frame)
	case AwaitingAddress:
		s.handleIDAck(frame)
	case Operational:
		s.handleOperational(frame)
	default:
		s.logger.Debug("datagram ignored before start", "kind", frame.Kind.String())
	}
}

func (s *Session) handleNodeID(frame *mptn.Frame) {
	s.keeper.SetNodeID(frame.NodeID)
	s.logger.Info("node id assigned", "node_id", frame.NodeID)

	if err := s.sendTunnel(mptn.MasterAddr, mptn.MasterAddr, mptn.WildcardAddr,
		mptn.MsgForwardRequest, nodeIDAck); err != nil {
		s.logger.Error("failed to acknowledge node id", "error", err)
	}

	id := s.keeper.UUID()
	if err := s.sendTunnel(s.cfg.localAddr, mptn.MasterAddr, mptn.WildcardAddr,
		mptn.MsgIDRequest, id[:]); err != nil {
		s.logger.Error("failed to send id request", "error", err)
		return
	}

	s.stateMgr.to(AwaitingAddress)
}

func (s *Session) handleIDAck(frame *mptn.Frame) {
	if frame.Kind != mptn.KindTunnel {
		s.logger.Warn("unexpected frame while awaiting address", "kind", frame.Kind.String())
		return
	}

	p, err := s.codec.DecodePacket(frame.Payload)
	if err != nil {
		s.logger.Warn("undecodable packet while awaiting address", "error", err)
		return
	}

	if p.Type != mptn.MsgIDAck || p.Src != mptn.MasterAddr {
		s.logger.Warn("unexpected packet while awaiting address",
			"type", p.Type.String(), "src", mptn.AddrToString(p.Src))

		return
	}

	s.address.Store(p.Dest)
	s.logger.Info("network address assigned", "address", p.Dest, "dotted", mptn.AddrToString(p.Dest))
	s.stateMgr.to(Operational)
}

func (s *Session) handleOperational(frame *mptn.Frame) {
	if frame.Kind != mptn.KindTunnel {
		s.logger.Debug("non-tunnel frame dropped", "kind", frame.Kind.String())
		return
	}

	p, err := s.codec.DecodePacket(frame.Payload)
	if err != nil {
		s.metrics.incFramingErrCount()
		s.logger.Debug("undecodable packet dropped", "error", err)

		return
	}

	if p.Type != mptn.MsgForwardRequest {
		s.logger.Debug("packet dropped", "type", p.Type.String(), "src", mptn.AddrToString(p.Src))
		return
	}

	msg, err := wkpf.DecodeMessage(p.Payload)
	if err != nil {
		s.metrics.incFramingErrCount()
		s.logger.Debug("wkpf message dropped", "src", mptn.AddrToString(p.Src), "error", err)

		return
	}

	s.metrics.incCommandCount()
	src := p.Src
	s.dispatcher.Dispatch(src, msg, func(reply wkpf.Message) {
		if reply.Opcode == wkpf.OpErrorR {
			s.metrics.incErrorReplyCount()
		}

		if err := s.sendTunnel(src, src, s.Address(), mptn.MsgForwardRequest, reply.Encode()); err != nil {
			s.logger.Error("failed to send reply", "reply", reply.String(), "error", err)
		}
	})
}

func (s *Session) onCommit(src uint32, res *reprog.Result) {
	s.metrics.incCommitCount()

	if s.cfg.onCommit != nil {
		s.cfg.onCommit(src, res)
	}
}

// sendTunnel wraps a packet in a tunnel frame whose address field is frameAddr.
// Forwarded messages carry their destination there, the ID request carries the
// node's own address.
func (s *Session) sendTunnel(frameAddr, dest, src uint32, msgType mptn.MsgType, payload []byte) error {
	f := &mptn.Frame{
		NodeID:  s.keeper.NodeID(),
		Addr:    frameAddr,
		Port:    uint16(s.localPort.Load()), //nolint:gosec
		Kind:    mptn.KindTunnel,
		Payload: s.codec.EncodePacket(dest, src, msgType, payload),
	}

	return s.sendFrame(f)
}

func (s *Session) sendFrame(f *mptn.Frame) error {
	data, err := f.Pack()
	if err != nil {
		s.metrics.incSendErrCount()
		return err
	}

	if err := s.transport.Send(data); err != nil {
		s.metrics.incSendErrCount()
		return err
	}
	s.metrics.incDatagramSendCount()
	s.logger.Debug("datagram sent", "kind", f.Kind.String(), "data", util.HexDump(data))

	return nil
}
