package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/arloliu/go-wkpf/internal/pool"
	"github.com/arloliu/go-wkpf/internal/task"
	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/wkpf"
)

// Endpoint binds a Session to a UDP socket talking to the gateway.
type Endpoint struct {
	pctx    context.Context
	cfg     *Config
	session *Session
	taskMgr *task.Manager
	opState atomicOpState
	logger  logger.Logger

	connMutex sync.RWMutex
	conn      *net.UDPConn
	gwAddr    *net.UDPAddr
}

// NewEndpoint creates an endpoint for one node session.
//
// The identity is loaded immediately; the socket is bound by Open.
func NewEndpoint(ctx context.Context, cfg *Config, registry *wkpf.Registry) (*Endpoint, error) {
	if cfg == nil {
		return nil, errors.New("node: config is nil")
	}

	ep := &Endpoint{
		pctx:    ctx,
		cfg:     cfg,
		taskMgr: task.NewManager(ctx, cfg.logger),
		logger:  cfg.logger.With("component", "endpoint"),
	}
	ep.opState.set(closedState)

	session, err := NewSession(cfg, registry, ep)
	if err != nil {
		return nil, err
	}
	ep.session = session

	return ep, nil
}

// Session returns the endpoint's session.
func (ep *Endpoint) Session() *Session {
	return ep.session
}

// Metrics returns the endpoint counters.
func (ep *Endpoint) Metrics() *EndpointMetrics {
	return ep.session.Metrics()
}

// LocalAddr returns the bound UDP address, or nil before Open.
func (ep *Endpoint) LocalAddr() *net.UDPAddr {
	conn := ep.getConn()
	if conn == nil {
		return nil
	}
	addr, _ := conn.LocalAddr().(*net.UDPAddr)

	return addr
}

// Open binds the UDP socket, starts the receive loop and sends the registration probe.
//
// If waitOperational is true, it blocks until the session is Operational or the
// endpoint context ends.
func (ep *Endpoint) Open(waitOperational bool) error {
	if !ep.opState.toOpening() {
		return ErrAlreadyOpen
	}

	if err := ep.bind(); err != nil {
		ep.opState.set(closedState)
		return err
	}

	if err := ep.taskMgr.Start("recvLoop", ep.recvTask()); err != nil {
		ep.closeConn()
		ep.opState.set(closedState)

		return err
	}

	ctx := ep.taskMgr.Context()
	ep.opState.toOpened()
	ep.logger.Info("endpoint opened", "local", ep.LocalAddr().String(), "gateway", ep.cfg.GatewayAddr())

	if err := ep.session.Start(); err != nil {
		ep.logger.Error("failed to start session", "error", err)
		return err
	}

	if waitOperational {
		return ep.session.WaitState(ctx, Operational)
	}

	return nil
}

// Close stops the receive loop and closes the socket.
func (ep *Endpoint) Close() error {
	if !ep.opState.toClosing() {
		return nil
	}
	defer ep.opState.set(closedState)

	ep.taskMgr.Stop()
	ep.closeConn()

	done := make(chan struct{})
	go func() {
		ep.taskMgr.Wait()
		close(done)
	}()

	closeTimer := pool.GetTimer(ep.cfg.closeTimeout)
	defer pool.PutTimer(closeTimer)

	select {
	case <-done:
		ep.logger.Debug("endpoint closed")
		return nil
	case <-closeTimer.C:
		ep.logger.Error("close endpoint timeout", "timeout", ep.cfg.closeTimeout)
		return ErrCloseTimeout
	}
}

// Send writes a datagram to the gateway. It implements Transport.
func (ep *Endpoint) Send(data []byte) error {
	ep.connMutex.RLock()
	conn, gwAddr := ep.conn, ep.gwAddr
	ep.connMutex.RUnlock()
	if conn == nil {
		return ErrNotOpen
	}

	if err := conn.SetWriteDeadline(time.Now().Add(ep.cfg.sendTimeout)); err != nil {
		return fmt.Errorf("node: set write deadline: %w", err)
	}
	if _, err := conn.WriteToUDP(data, gwAddr); err != nil {
		return fmt.Errorf("node: send to gateway: %w", err)
	}

	return nil
}

func (ep *Endpoint) bind() error {
	gwAddr, err := net.ResolveUDPAddr("udp4", ep.cfg.GatewayAddr())
	if err != nil {
		return fmt.Errorf("node: resolve gateway %s: %w", ep.cfg.GatewayAddr(), err)
	}

	localAddr, err := net.ResolveUDPAddr("udp4", ep.cfg.LocalAddr())
	if err != nil {
		return fmt.Errorf("node: resolve local %s: %w", ep.cfg.LocalAddr(), err)
	}

	conn, err := net.ListenUDP("udp4", localAddr)
	if err != nil {
		return fmt.Errorf("node: listen %s: %w", ep.cfg.LocalAddr(), err)
	}

	ep.connMutex.Lock()
	ep.conn = conn
	ep.gwAddr = gwAddr
	ep.connMutex.Unlock()

	if bound, ok := conn.LocalAddr().(*net.UDPAddr); ok && ep.cfg.localPort == 0 {
		ep.session.setLocalPort(bound.Port)
	}

	return nil
}

func (ep *Endpoint) getConn() *net.UDPConn {
	ep.connMutex.RLock()
	defer ep.connMutex.RUnlock()

	return ep.conn
}

func (ep *Endpoint) closeConn() {
	ep.connMutex.Lock()
	conn := ep.conn
	ep.conn = nil
	ep.connMutex.Unlock()

	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		ep.logger.Error("failed to close udp socket", "error", err)
	}
}

// recvTask returns the receive loop iteration. Each datagram is handled to
// completion before the next read.
func (ep *Endpoint) recvTask() task.Func {
	conn := ep.getConn()
	buf := make([]byte, ep.cfg.recvBufferSize)

	return func() bool {
		if err := conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			ep.logger.Error("failed to set read deadline", "error", err)
			return false
		}

		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return true
			}
			if errors.Is(err, net.ErrClosed) {
				return false
			}
			ep.logger.Warn("udp read failed", "error", err)

			return true
		}

		ep.logger.Debug("datagram from", "addr", from.String(), "len", n)
		ep.session.HandleDatagram(buf[:n])

		return true
	}
}
