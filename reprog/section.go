package reprog

import (
	"encoding/binary"
	"fmt"
)

// SectionHeaderSize is the size of a section header: length(2) and type(1).
const SectionHeaderSize = 3

// Table is one decoded section. The concrete type is one of *LinkTable,
// *ComponentMap, *InitValues or *Opaque.
type Table interface {
	SectionType() SectionType
}

// Result is the outcome of parsing a committed transfer.
//
// Tables holds every section parsed before Err, in blob order.
type Result struct {
	FilledLen int
	Tables    []Table
	Err       error
}

// LinkTable returns the first link table, if any.
func (r *Result) LinkTable() (*LinkTable, bool) {
	for _, t := range r.Tables {
		if lt, ok := t.(*LinkTable); ok {
			return lt, true
		}
	}

	return nil, false
}

// ComponentMap returns the first component map, if any.
func (r *Result) ComponentMap() (*ComponentMap, bool) {
	for _, t := range r.Tables {
		if cm, ok := t.(*ComponentMap); ok {
			return cm, true
		}
	}

	return nil, false
}

// InitValues returns the first init-values table, if any.
func (r *Result) InitValues() (*InitValues, bool) {
	for _, t := range r.Tables {
		if iv, ok := t.(*InitValues); ok {
			return iv, true
		}
	}

	return nil, false
}

// ParseSections splits data into sections and decodes the known table types.
//
// Parsing stops at the first section whose header or body does not fit in data
// (ErrSectionOverrun) or whose body is malformed (ErrMalformedSection). Sections
// parsed before the failure are kept.
func ParseSections(data []byte) *Result {
	res := &Result{FilledLen: len(data)}

	pos := 0
	for pos < len(data) {
		if pos+SectionHeaderSize > len(data) {
			res.Err = fmt.Errorf("%w: header at %d needs %d bytes, have %d",
				ErrSectionOverrun, pos, SectionHeaderSize, len(data)-pos)
			return res
		}

		length := int(binary.LittleEndian.Uint16(data[pos:]))
		typ := SectionType(data[pos+2])
		start := pos + SectionHeaderSize
		if start+length > len(data) {
			res.Err = fmt.Errorf("%w: %s at %d declares %d bytes, have %d",
				ErrSectionOverrun, typ, pos, length, len(data)-start)
			return res
		}

		body := data[start : start+length]
		table, err := parseTable(typ, body)
		if err != nil {
			res.Err = fmt.Errorf("%s at %d: %w", typ, pos, err)
			return res
		}
		res.Tables = append(res.Tables, table)

		pos = start + length
	}

	return res
}

func parseTable(typ SectionType, body []byte) (Table, error) {
	switch typ {
	case SectionLinkTable:
		return parseLinkTable(body)
	case SectionComponentMap:
		return parseComponentMap(body)
	case SectionInitValues:
		return &InitValues{Raw: append([]byte(nil), body...)}, nil
	default:
		return &Opaque{Type: typ, Raw: append([]byte(nil), body...)}, nil
	}
}

// sectionReader reads little-endian fields from a section body.
type sectionReader struct {
	input []byte
	pos   int
}

func (r *sectionReader) remaining() int {
	return len(r.input) - r.pos
}

func (r *sectionReader) read(n int) ([]byte, error) {
	if r.pos+n > len(r.input) {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrMalformedSection, n, r.pos, r.remaining())
	}
	b := r.input[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

func (r *sectionReader) readByte() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (r *sectionReader) readUint16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

func (r *sectionReader) readUint32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// seek moves the cursor to an absolute offset within the body.
func (r *sectionReader) seek(off int) error {
	if off < 0 || off >= len(r.input) {
		return fmt.Errorf("%w: offset %d outside body of %d bytes", ErrMalformedSection, off, len(r.input))
	}
	r.pos = off

	return nil
}
