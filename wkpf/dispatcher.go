package wkpf

import (
	"sync"

	"github.com/arloliu/go-wkpf/internal/util"
	"github.com/arloliu/go-wkpf/logger"
	"github.com/arloliu/go-wkpf/reprog"
)

// ReplyFunc sends one response message back to the requester.
type ReplyFunc func(msg Message)

// LocationStore holds the node location.
type LocationStore interface {
	Location() []byte
	SetLocation(loc []byte) error
}

// CommitHandler receives the parsed result of every committed transfer.
type CommitHandler func(src uint32, res *reprog.Result)

// RebootHandler is called after a REPROG_REBOOT has been acknowledged.
type RebootHandler func(src uint32)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Registry is the node's class and object registry. Required.
	Registry *Registry
	// Location stores the node location. Required.
	Location LocationStore
	// TransferCapacity is the reprogramming buffer size; 0 selects reprog.DefaultCapacity.
	TransferCapacity int
	OnCommit         CommitHandler
	OnReboot         RebootHandler
	Logger           logger.Logger
}

type handlerFunc func(d *Dispatcher, src uint32, req Message, reply ReplyFunc)

// handlers maps request opcodes to their handlers. Opcodes missing from the
// table are answered with ERROR_R not-implemented.
var handlers = map[Opcode]handlerFunc{
	OpGetLocation:     (*Dispatcher).handleGetLocation,
	OpSetLocation:     (*Dispatcher).handleSetLocation,
	OpGetWuClassList:  (*Dispatcher).handleGetWuClassList,
	OpGetWuObjectList: (*Dispatcher).handleGetWuObjectList,
	OpReprogOpen:      (*Dispatcher).handleReprogOpen,
	OpReprogWrite:     (*Dispatcher).handleReprogWrite,
	OpReprogCommit:    (*Dispatcher).handleReprogCommit,
	OpReprogReboot:    (*Dispatcher).handleReprogReboot,
}

// Dispatcher routes WKPF requests to their handlers.
//
// Dispatch must be called from a single goroutine.
type Dispatcher struct {
	registry *Registry
	location LocationStore
	engine   *reprog.Engine
	onCommit CommitHandler
	onReboot RebootHandler
	logger   logger.Logger

	// scratch accumulates a chunked SET_LOCATION transfer.
	scratch []byte

	mu         sync.RWMutex
	lastCommit *reprog.Result
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	l := cfg.Logger
	if l == nil {
		l = logger.GetLogger()
	}

	return &Dispatcher{
		registry: cfg.Registry,
		location: cfg.Location,
		engine:   reprog.NewEngine(cfg.TransferCapacity),
		onCommit: cfg.OnCommit,
		onReboot: cfg.OnReboot,
		logger:   l.With("component", "dispatcher"),
	}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// LastCommit returns the result of the most recent REPROG_COMMIT, or nil.
func (d *Dispatcher) LastCommit() *reprog.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.lastCommit
}

// Dispatch handles one request from src and emits its responses through reply.
func (d *Dispatcher) Dispatch(src uint32, req Message, reply ReplyFunc) {
	d.logger.Debug("dispatch", "src", src, "msg", req.String(), "body", util.HexDump(req.Body))

	h, ok := handlers[req.Opcode]
	if !ok {
		d.logger.Warn("opcode not implemented", "src", src, "opcode", req.Opcode.String(), "seq", req.Seq)
		reply(NewErrorReply(req, ErrCodeNotImplemented))

		return
	}

	h(d, src, req, reply)
}

func (d *Dispatcher) malformed(req Message, reply ReplyFunc, want int) {
	d.logger.Warn("malformed request body", "opcode", req.Opcode.String(), "seq", req.Seq,
		"len", len(req.Body), "want", want)
	reply(NewErrorReply(req, ErrCodeMalformed))
}
