package node

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/arloliu/go-wkpf/identity"
	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/mptn"
	"github.com/arloliu/go-wkpf/reprog"
	"github.com/arloliu/go-wkpf/wkpf"
)

// Default values of the endpoint configuration.
const (
	DefaultCloseTimeout   = 3 * time.Second
	DefaultSendTimeout    = 3 * time.Second
	DefaultRecvBufferSize = 2048

	// readPollInterval bounds how long the receive loop blocks before checking for shutdown.
	readPollInterval = 200 * time.Millisecond
)

// MaxTransferCapacity is the largest capacity a REPROG_OPEN response can announce.
const MaxTransferCapacity = 0xFFFF

// TunnelCodec encodes and decodes the packets carried in tunnel frames.
// mptn.Codec is the default implementation.
type TunnelCodec interface {
	EncodePacket(dest, src uint32, msgType mptn.MsgType, payload []byte) []byte
	DecodePacket(data []byte) (mptn.Packet, error)
}

// Config holds the configuration of a node session and its UDP endpoint.
type Config struct {
	gatewayHost string
	gatewayPort int

	// localHost is the IPv4 address announced to the gateway and bound by the endpoint.
	localHost string
	localAddr uint32
	localPort int

	identityStore identity.Store
	codec         TunnelCodec

	closeTimeout     time.Duration
	sendTimeout      time.Duration
	recvBufferSize   int
	transferCapacity int

	onCommit wkpf.CommitHandler
	onReboot wkpf.RebootHandler

	logger logger.Logger
}

// NewConfig creates a node configuration.
//
// gatewayHost is the gateway address, localHost and localPort the IPv4 address
// and UDP port of this node. A localPort of 0 binds an ephemeral port.
// opts are functional options applied in order; see With* functions.
func NewConfig(gatewayHost string, localHost string, localPort int, opts ...Option) (*Config, error) {
	cfg := &Config{
		gatewayPort:      mptn.GatewayUDPPort,
		codec:            mptn.Codec{},
		closeTimeout:     DefaultCloseTimeout,
		sendTimeout:      DefaultSendTimeout,
		recvBufferSize:   DefaultRecvBufferSize,
		transferCapacity: reprog.DefaultCapacity,
		logger:           logger.GetLogger(),
	}

	if err := cfg.setGatewayHost(gatewayHost); err != nil {
		return nil, err
	}
	if err := cfg.setLocalHost(localHost); err != nil {
		return nil, err
	}
	if localPort < 0 || localPort > 65535 {
		return nil, fmt.Errorf("node: local port %d out of range [0, 65535]", localPort)
	}
	cfg.localPort = localPort

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.identityStore == nil {
		cfg.identityStore = identity.NewFileStore(identity.DefaultFileName)
	}

	return cfg, nil
}

func (cfg *Config) setGatewayHost(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		cfg.gatewayHost = host
		return nil
	}

	host = strings.TrimSuffix(host, ".")
	if host != "" {
		if _, err := net.LookupHost(host); err == nil {
			cfg.gatewayHost = host
			return nil
		}
	}

	return fmt.Errorf("node: invalid gateway host %q", host)
}

func (cfg *Config) setLocalHost(host string) error {
	addr, err := mptn.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("node: invalid local host: %w", err)
	}
	cfg.localHost = host
	cfg.localAddr = addr

	return nil
}

// GatewayHost returns the gateway host.
func (cfg *Config) GatewayHost() string { return cfg.gatewayHost }

// GatewayPort returns the gateway UDP port.
func (cfg *Config) GatewayPort() int { return cfg.gatewayPort }

// GatewayAddr returns "host:port" of the gateway.
func (cfg *Config) GatewayAddr() string {
	return net.JoinHostPort(cfg.gatewayHost, fmt.Sprint(cfg.gatewayPort))
}

// LocalHost returns the local IPv4 address.
func (cfg *Config) LocalHost() string { return cfg.localHost }

// LocalPort returns the local UDP port.
func (cfg *Config) LocalPort() int { return cfg.localPort }

// LocalAddr returns "host:port" of the local endpoint.
func (cfg *Config) LocalAddr() string {
	return net.JoinHostPort(cfg.localHost, fmt.Sprint(cfg.localPort))
}

// IdentityStore returns the identity store.
func (cfg *Config) IdentityStore() identity.Store { return cfg.identityStore }

// TunnelCodec returns the tunnel packet codec.
func (cfg *Config) TunnelCodec() TunnelCodec { return cfg.codec }

// CloseTimeout returns the timeout of Endpoint.Close.
func (cfg *Config) CloseTimeout() time.Duration { return cfg.closeTimeout }

// SendTimeout returns the UDP write deadline.
func (cfg *Config) SendTimeout() time.Duration { return cfg.sendTimeout }

// RecvBufferSize returns the size of the datagram receive buffer.
func (cfg *Config) RecvBufferSize() int { return cfg.recvBufferSize }

// TransferCapacity returns the reprogramming buffer capacity.
func (cfg *Config) TransferCapacity() int { return cfg.transferCapacity }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithGatewayPort sets the gateway UDP port. Default is 5775.
func WithGatewayPort(port int) Option {
	return optFunc(func(cfg *Config) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("node: gateway port %d out of range [1, 65535]", port)
		}
		cfg.gatewayPort = port

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("node: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithIdentityStore sets where the node identity is persisted.
// Default is a JSON file named udpwkpf.json in the working directory.
func WithIdentityStore(store identity.Store) Option {
	return optFunc(func(cfg *Config) error {
		if store == nil {
			return errors.New("node: identity store must not be nil")
		}
		cfg.identityStore = store

		return nil
	})
}

// WithTunnelCodec replaces the MPTN packet codec.
func WithTunnelCodec(codec TunnelCodec) Option {
	return optFunc(func(cfg *Config) error {
		if codec == nil {
			return errors.New("node: tunnel codec must not be nil")
		}
		cfg.codec = codec

		return nil
	})
}

// WithCloseTimeout sets how long Close waits for the receive loop to stop.
func WithCloseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("node: close timeout must be positive")
		}
		cfg.closeTimeout = d

		return nil
	})
}

// WithSendTimeout sets the UDP write deadline.
func WithSendTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("node: send timeout must be positive")
		}
		cfg.sendTimeout = d

		return nil
	})
}

// WithRecvBufferSize sets the datagram receive buffer size.
func WithRecvBufferSize(size int) Option {
	return optFunc(func(cfg *Config) error {
		if size < mptn.FrameHeaderSize {
			return fmt.Errorf("node: receive buffer size must be >= %d", mptn.FrameHeaderSize)
		}
		cfg.recvBufferSize = size

		return nil
	})
}

// WithTransferCapacity sets the reprogramming buffer capacity. Default is 1024.
func WithTransferCapacity(capacity int) Option {
	return optFunc(func(cfg *Config) error {
		if capacity < 1 || capacity > MaxTransferCapacity {
			return fmt.Errorf("node: transfer capacity %d out of range [1, %d]", capacity, MaxTransferCapacity)
		}
		cfg.transferCapacity = capacity

		return nil
	})
}

// WithCommitHandler sets the handler receiving every committed reprogramming result.
func WithCommitHandler(h wkpf.CommitHandler) Option {
	return optFunc(func(cfg *Config) error {
		cfg.onCommit = h
		return nil
	})
}

// WithRebootHandler sets the handler called on REPROG_REBOOT.
func WithRebootHandler(h wkpf.RebootHandler) Option {
	return optFunc(func(cfg *Config) error {
		cfg.onReboot = h
		return nil
	})
}
