package mptn

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// AddrToString formats a network address in dotted notation, most significant byte first.
func AddrToString(addr uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)

	return netip.AddrFrom4(b).String()
}

// ParseAddr parses a dotted IPv4 string into a network address.
func ParseAddr(s string) (uint32, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("mptn: invalid address %q: %w", s, err)
	}
	if !ip.Is4() {
		return 0, fmt.Errorf("mptn: address %q is not IPv4", s)
	}
	b := ip.As4()

	return binary.BigEndian.Uint32(b[:]), nil
}
