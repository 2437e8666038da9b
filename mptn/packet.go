package mptn

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/arloliu/go-wkpf/internal/util"
)

// PacketHeaderSize is the size of the MPTN packet header: dest, src and type.
const PacketHeaderSize = 9

// GatewayUDPPort is the UDP port a WuKong gateway listens on.
const GatewayUDPPort = 5775

const (
	// MasterAddr is the network address of the master controller.
	MasterAddr uint32 = 0
	// WildcardAddr is the source address used before an address is assigned.
	WildcardAddr uint32 = 0xFFFFFFFF
)

// MsgType is the MPTN message type.
type MsgType uint8

const (
	MsgGatewayDiscover MsgType = 0
	MsgGatewayOffer    MsgType = 1
	MsgIDRequest       MsgType = 2
	MsgIDAck           MsgType = 3
	MsgIDNak           MsgType = 4
	MsgGatewayIDReq    MsgType = 5
	MsgGatewayIDAck    MsgType = 6
	MsgGatewayIDNak    MsgType = 7
	MsgRoutePing       MsgType = 8
	MsgRouteRequest    MsgType = 9
	MsgRouteReply      MsgType = 10
	MsgRPCCommand      MsgType = 16
	MsgRPCReply        MsgType = 17
	MsgForwardRequest  MsgType = 24
	MsgForwardAck      MsgType = 25
	MsgForwardNak      MsgType = 26
)

var msgTypeNames = map[MsgType]string{
	MsgGatewayDiscover: "gwdiscover",
	MsgGatewayOffer:    "gwoffer",
	MsgIDRequest:       "idreq",
	MsgIDAck:           "idack",
	MsgIDNak:           "idnak",
	MsgGatewayIDReq:    "gwidreq",
	MsgGatewayIDAck:    "gwidack",
	MsgGatewayIDNak:    "gwidnak",
	MsgRoutePing:       "rtping",
	MsgRouteRequest:    "rtreq",
	MsgRouteReply:      "rtrep",
	MsgRPCCommand:      "rpccmd",
	MsgRPCReply:        "rpcrep",
	MsgForwardRequest:  "fwdreq",
	MsgForwardAck:      "fwdack",
	MsgForwardNak:      "fwdnak",
}

// String returns string representation of the message type.
func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("msgtype(%d)", uint8(t))
}

// ErrShortPacket indicates an MPTN packet shorter than its header.
var ErrShortPacket = errors.New("mptn: packet shorter than header")

// Packet is one MPTN message.
type Packet struct {
	Dest    uint32
	Src     uint32
	Type    MsgType
	Payload []byte
}

// Codec is the default MPTN packet codec.
type Codec struct{}

// EncodePacket serializes an MPTN packet.
func (Codec) EncodePacket(dest, src uint32, msgType MsgType, payload []byte) []byte {
	buf := make([]byte, PacketHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], dest)
	binary.BigEndian.PutUint32(buf[4:8], src)
	buf[8] = byte(msgType)
	copy(buf[PacketHeaderSize:], payload)

	return buf
}

// DecodePacket parses an MPTN packet. The returned payload is a copy.
func (Codec) DecodePacket(data []byte) (Packet, error) {
	if len(data) < PacketHeaderSize {
		return Packet{}, fmt.Errorf("%w: got %d bytes", ErrShortPacket, len(data))
	}

	p := Packet{
		Dest: binary.BigEndian.Uint32(data[0:4]),
		Src:  binary.BigEndian.Uint32(data[4:8]),
		Type: MsgType(data[8]),
	}
	if len(data) > PacketHeaderSize {
		p.Payload = util.CloneSlice(data[PacketHeaderSize:], 0)
	}

	return p, nil
}
