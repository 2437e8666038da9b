package reprog

import "encoding/binary"

// section encodes one section with the given type and body.
func section(typ SectionType, body []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(body)))
	out = append(out, byte(typ))

	return append(out, body...)
}

func linkTableBody(entries ...LinkEntry) []byte {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(entries)))
	for _, e := range entries {
		out = binary.LittleEndian.AppendUint16(out, e.SrcID)
		out = append(out, e.SrcPort)
		out = binary.LittleEndian.AppendUint16(out, e.DestID)
		out = append(out, e.DestPort)
	}

	return out
}

// componentMapBody lays the descriptors out back to back after the offset table.
func componentMapBody(components ...Component) []byte {
	header := binary.LittleEndian.AppendUint16(nil, uint16(len(components)))
	var descs []byte
	base := 2 + 2*len(components)
	for _, c := range components {
		header = binary.LittleEndian.AppendUint16(header, uint16(base+len(descs)))
		descs = append(descs, byte(len(c.Endpoints)))
		descs = binary.LittleEndian.AppendUint16(descs, c.ClassID)
		for _, ep := range c.Endpoints {
			descs = binary.LittleEndian.AppendUint32(descs, ep.Address)
			descs = append(descs, ep.Port)
		}
	}

	return append(header, descs...)
}
