package wkpf

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/arloliu/go-wkpf/mptn"
)

// HeaderSize is the size of the sub-frame header: opcode and sequence number.
const HeaderSize = 3

// MaxBodyLen is the largest body a reply forwarded in one tunnel frame can carry.
const MaxBodyLen = mptn.MaxFramePayload - mptn.PacketHeaderSize - HeaderSize

// PayloadCapacity is the number of bytes a node-side message may carry.
const PayloadCapacity = 40

// ErrCode is the error code carried by ERROR_R.
type ErrCode uint8

const (
	// ErrCodeNotImplemented is returned for opcodes the node does not handle.
	ErrCodeNotImplemented ErrCode = 1
	// ErrCodeMalformed is returned for a body too short for its opcode.
	ErrCodeMalformed ErrCode = 2
	// ErrCodeParseFailed is returned after a committed transfer fails to parse.
	ErrCodeParseFailed ErrCode = 3
)

// String returns string representation of the error code.
func (c ErrCode) String() string {
	switch c {
	case ErrCodeNotImplemented:
		return "not-implemented"
	case ErrCodeMalformed:
		return "malformed"
	case ErrCodeParseFailed:
		return "parse-failed"
	default:
		return fmt.Sprintf("errcode(%d)", uint8(c))
	}
}

// ErrShortMessage indicates a sub-frame shorter than its header.
var ErrShortMessage = errors.New("wkpf: message shorter than header")

// Message is one WKPF sub-frame.
type Message struct {
	Opcode Opcode
	Seq    uint16
	Body   []byte
}

// DecodeMessage parses a sub-frame. The body aliases data.
func DecodeMessage(data []byte) (Message, error) {
	if len(data) < HeaderSize {
		return Message{}, fmt.Errorf("%w: got %d bytes", ErrShortMessage, len(data))
	}

	return Message{
		Opcode: Opcode(data[0]),
		Seq:    binary.LittleEndian.Uint16(data[1:3]),
		Body:   data[HeaderSize:],
	}, nil
}

// Encode serializes the message.
func (m Message) Encode() []byte {
	buf := make([]byte, HeaderSize, HeaderSize+len(m.Body))
	buf[0] = byte(m.Opcode)
	binary.LittleEndian.PutUint16(buf[1:3], m.Seq)

	return append(buf, m.Body...)
}

// String returns a short description for logging.
func (m Message) String() string {
	return fmt.Sprintf("%s seq=%d len=%d", m.Opcode, m.Seq, len(m.Body))
}

// NewReply builds the response to req with the given body.
func NewReply(req Message, body []byte) Message {
	return Message{Opcode: req.Opcode.Response(), Seq: req.Seq, Body: body}
}

// NewErrorReply builds an ERROR_R for req.
func NewErrorReply(req Message, code ErrCode) Message {
	return Message{Opcode: OpErrorR, Seq: req.Seq, Body: []byte{byte(req.Opcode), byte(code)}}
}
