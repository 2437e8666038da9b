package reprog

import "fmt"

// LinkEntry connects an output property of one component to an input of another.
type LinkEntry struct {
	SrcID    uint16
	SrcPort  uint8
	DestID   uint16
	DestPort uint8
}

// LinkKey identifies the source side of a link.
type LinkKey struct {
	SrcID   uint16
	SrcPort uint8
}

// LinkDest is the destination side of a link.
type LinkDest struct {
	DestID   uint16
	DestPort uint8
}

// LinkTable is a decoded LINK_TABLE section.
type LinkTable struct {
	Entries []LinkEntry
}

// SectionType returns SectionLinkTable.
func (*LinkTable) SectionType() SectionType { return SectionLinkTable }

// Routes groups destinations by source, keeping table order within each source.
func (t *LinkTable) Routes() map[LinkKey][]LinkDest {
	routes := make(map[LinkKey][]LinkDest, len(t.Entries))
	for _, e := range t.Entries {
		key := LinkKey{SrcID: e.SrcID, SrcPort: e.SrcPort}
		routes[key] = append(routes[key], LinkDest{DestID: e.DestID, DestPort: e.DestPort})
	}

	return routes
}

// Endpoint is a network address and port a component is reachable at.
type Endpoint struct {
	Address uint32
	Port    uint8
}

// Component is one entry of the component map.
type Component struct {
	ClassID   uint16
	Endpoints []Endpoint
}

// ComponentMap is a decoded COMPONENT_MAP section.
type ComponentMap struct {
	Components []Component
}

// SectionType returns SectionComponentMap.
func (*ComponentMap) SectionType() SectionType { return SectionComponentMap }

// InitValues is an INITVALUES_TABLE section, kept as raw bytes.
type InitValues struct {
	Raw []byte
}

// SectionType returns SectionInitValues.
func (*InitValues) SectionType() SectionType { return SectionInitValues }

// Opaque is a section of a type this package does not decode.
type Opaque struct {
	Type SectionType
	Raw  []byte
}

// SectionType returns the section type read from the header.
func (o *Opaque) SectionType() SectionType { return o.Type }

// linkEntrySize is the encoded size of one link entry.
const linkEntrySize = 6

// parseLinkTable decodes: count(2) | count x (src_id(2), src_port(1), dest_id(2), dest_port(1)).
func parseLinkTable(body []byte) (*LinkTable, error) {
	r := &sectionReader{input: body}

	count, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	if int(count)*linkEntrySize > r.remaining() {
		return nil, fmt.Errorf("%w: %d links need %d bytes, have %d",
			ErrMalformedSection, count, int(count)*linkEntrySize, r.remaining())
	}

	t := &LinkTable{Entries: make([]LinkEntry, 0, count)}
	for range int(count) {
		var e LinkEntry
		if e.SrcID, err = r.readUint16(); err != nil {
			return nil, err
		}
		if e.SrcPort, err = r.readByte(); err != nil {
			return nil, err
		}
		if e.DestID, err = r.readUint16(); err != nil {
			return nil, err
		}
		if e.DestPort, err = r.readByte(); err != nil {
			return nil, err
		}
		t.Entries = append(t.Entries, e)
	}

	return t, nil
}

// parseComponentMap decodes: count(2) | count x offset(2), each offset pointing to
// endpoints(1) | class_id(2) | endpoints x (address(4), port(1)).
func parseComponentMap(body []byte) (*ComponentMap, error) {
	r := &sectionReader{input: body}

	count, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	if int(count)*2 > r.remaining() {
		return nil, fmt.Errorf("%w: %d component offsets need %d bytes, have %d",
			ErrMalformedSection, count, int(count)*2, r.remaining())
	}

	offsets := make([]uint16, count)
	for i := range offsets {
		if offsets[i], err = r.readUint16(); err != nil {
			return nil, err
		}
	}

	m := &ComponentMap{Components: make([]Component, 0, count)}
	for i, off := range offsets {
		if err := r.seek(int(off)); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}

		n, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		var c Component
		if c.ClassID, err = r.readUint16(); err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}

		c.Endpoints = make([]Endpoint, 0, n)
		for range int(n) {
			var ep Endpoint
			if ep.Address, err = r.readUint32(); err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			if ep.Port, err = r.readByte(); err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			c.Endpoints = append(c.Endpoints, ep)
		}
		m.Components = append(m.Components, c)
	}

	return m, nil
}
