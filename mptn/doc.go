// Package mptn implements the wire formats used to reach a WuKong gateway over UDP.
//
// Two layers are involved:
//
//   - Frame: the fixed 11-byte outer header exchanged with the gateway's UDP
//     interface. It carries the sender's short node id, an address/port pair and a
//     frame kind followed by at most 255 bytes of payload.
//   - Packet: the MPTN (multi-protocol transport network) message carried inside a
//     tunnel-wrapped frame: destination and source network addresses, a message
//     type and an opaque payload.
//
// # Frame layout
//
//	0xAA 0x55 | node_id(1) | address(4, LE) | port(2, LE) | kind(1) | length(1) | payload
//
// Kind 2 frames (registration probes) carry no payload; kind 1 frames carry an
// encoded Packet.
//
// # Packet layout
//
//	dest(4, BE) | src(4, BE) | type(1) | payload
//
// Network addresses are 32-bit values; [MasterAddr] is the master controller and
// [WildcardAddr] is used as the source of a node that has no address yet.
package mptn
