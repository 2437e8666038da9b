package reprog

import "fmt"

// Status is the one-byte result carried by reprogramming responses.
type Status uint8

const (
	StatusOK                Status = 0
	StatusRequestRetransmit Status = 1
	StatusTooLarge          Status = 2
	StatusFailed            Status = 3
)

// String returns string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRequestRetransmit:
		return "request-retransmit"
	case StatusTooLarge:
		return "too-large"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// SectionType identifies the content of a committed section.
type SectionType uint8

const (
	SectionLibInfusion  SectionType = 0
	SectionAppInfusion  SectionType = 1
	SectionLinkTable    SectionType = 2
	SectionComponentMap SectionType = 3
	SectionInitValues   SectionType = 4
)

// String returns string representation of the section type.
func (t SectionType) String() string {
	switch t {
	case SectionLibInfusion:
		return "lib-infusion"
	case SectionAppInfusion:
		return "app-infusion"
	case SectionLinkTable:
		return "link-table"
	case SectionComponentMap:
		return "component-map"
	case SectionInitValues:
		return "initvalues-table"
	default:
		return fmt.Sprintf("section(%d)", uint8(t))
	}
}
