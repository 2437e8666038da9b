package mptn

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/arloliu/go-wkpf/internal/util"
)

// FrameHeaderSize is the size of the outer tunnel frame header in bytes.
const FrameHeaderSize = 11

// MaxFramePayload is the largest payload a frame can carry; the length field is one byte.
const MaxFramePayload = 255

// Sync bytes that open every frame.
const (
	SyncByte0 byte = 0xAA
	SyncByte1 byte = 0x55
)

// FrameKind identifies what a frame payload holds.
type FrameKind uint8

const (
	// KindTunnel frames carry an encoded MPTN packet.
	KindTunnel FrameKind = 1
	// KindRegister frames are registration probes with an empty payload.
	KindRegister FrameKind = 2
)

// String returns string representation of the frame kind.
func (k FrameKind) String() string {
	switch k {
	case KindTunnel:
		return "tunnel"
	case KindRegister:
		return "register"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	// ErrShortFrame indicates a datagram shorter than the frame header.
	ErrShortFrame = errors.New("mptn: frame shorter than header")
	// ErrBadSync indicates a datagram that does not start with 0xAA 0x55.
	ErrBadSync = errors.New("mptn: bad sync bytes")
	// ErrTruncatedPayload indicates a payload length field larger than the datagram.
	ErrTruncatedPayload = errors.New("mptn: truncated frame payload")
	// ErrPayloadTooLarge indicates a payload that does not fit the one-byte length field.
	ErrPayloadTooLarge = errors.New("mptn: frame payload too large")
)

// Frame is one outer tunnel frame.
type Frame struct {
	NodeID  uint8
	Addr    uint32
	Port    uint16
	Kind    FrameKind
	Payload []byte
}

// Pack serializes the frame to its wire format.
func (f *Frame) Pack() ([]byte, error) {
	if len(f.Payload) > MaxFramePayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}

	buf := make([]byte, FrameHeaderSize+len(f.Payload))
	buf[0] = SyncByte0
	buf[1] = SyncByte1
	buf[2] = f.NodeID
	binary.LittleEndian.PutUint32(buf[3:7], f.Addr)
	binary.LittleEndian.PutUint16(buf[7:9], f.Port)
	buf[9] = byte(f.Kind)
	buf[10] = byte(len(f.Payload))
	copy(buf[FrameHeaderSize:], f.Payload)

	return buf, nil
}

// DecodeFrame parses a datagram into a Frame.
//
// Bytes following the declared payload are ignored. The returned payload is a
// copy and does not alias data.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) >= 2 && (data[0] != SyncByte0 || data[1] != SyncByte1) {
		return nil, fmt.Errorf("%w: 0x%02X 0x%02X", ErrBadSync, data[0], data[1])
	}
	if len(data) < FrameHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrShortFrame, len(data))
	}

	length := int(data[10])
	if FrameHeaderSize+length > len(data) {
		return nil, fmt.Errorf("%w: declared %d, have %d", ErrTruncatedPayload, length, len(data)-FrameHeaderSize)
	}

	f := &Frame{
		NodeID: data[2],
		Addr:   binary.LittleEndian.Uint32(data[3:7]),
		Port:   binary.LittleEndian.Uint16(data[7:9]),
		Kind:   FrameKind(data[9]),
	}
	if length > 0 {
		f.Payload = util.CloneSlice(data[FrameHeaderSize:FrameHeaderSize+length], 0)
	}

	return f, nil
}
