package wkpf

import "fmt"

// Opcode is a WKPF command or response code.
type Opcode uint8

const (
	OpReprogOpen    Opcode = 0x10
	OpReprogOpenR   Opcode = 0x11
	OpReprogWrite   Opcode = 0x12
	OpReprogWriteR  Opcode = 0x13
	OpReprogCommit  Opcode = 0x14
	OpReprogCommitR Opcode = 0x15
	OpReprogReboot  Opcode = 0x16
	OpReprogRebootR Opcode = 0x17

	OpGetWuClassList       Opcode = 0x90
	OpGetWuClassListR      Opcode = 0x91
	OpGetWuObjectList      Opcode = 0x92
	OpGetWuObjectListR     Opcode = 0x93
	OpReadProperty         Opcode = 0x94
	OpReadPropertyR        Opcode = 0x95
	OpWriteProperty        Opcode = 0x96
	OpWritePropertyR       Opcode = 0x97
	OpRequestPropertyInit  Opcode = 0x98
	OpRequestPropertyInitR Opcode = 0x99
	OpGetLocation          Opcode = 0x9A
	OpGetLocationR         Opcode = 0x9B
	OpSetLocation          Opcode = 0x9C
	OpSetLocationR         Opcode = 0x9D
	OpGetFeatures          Opcode = 0x9E
	OpGetFeaturesR         Opcode = 0x9F
	OpSetFeature           Opcode = 0xA0
	OpSetFeatureR          Opcode = 0xA1
	OpChangeMap            Opcode = 0xA2
	OpChangeMapR           Opcode = 0xA3
	OpChangeLink           Opcode = 0xA4
	OpChangeLinkR          Opcode = 0xA5

	OpErrorR Opcode = 0xAF
)

var opcodeNames = map[Opcode]string{
	OpReprogOpen:           "REPROG_OPEN",
	OpReprogOpenR:          "REPROG_OPEN_R",
	OpReprogWrite:          "REPROG_WRITE",
	OpReprogWriteR:         "REPROG_WRITE_R",
	OpReprogCommit:         "REPROG_COMMIT",
	OpReprogCommitR:        "REPROG_COMMIT_R",
	OpReprogReboot:         "REPROG_REBOOT",
	OpReprogRebootR:        "REPROG_REBOOT_R",
	OpGetWuClassList:       "GET_WUCLASS_LIST",
	OpGetWuClassListR:      "GET_WUCLASS_LIST_R",
	OpGetWuObjectList:      "GET_WUOBJECT_LIST",
	OpGetWuObjectListR:     "GET_WUOBJECT_LIST_R",
	OpReadProperty:         "READ_PROPERTY",
	OpReadPropertyR:        "READ_PROPERTY_R",
	OpWriteProperty:        "WRITE_PROPERTY",
	OpWritePropertyR:       "WRITE_PROPERTY_R",
	OpRequestPropertyInit:  "REQUEST_PROPERTY_INIT",
	OpRequestPropertyInitR: "REQUEST_PROPERTY_INIT_R",
	OpGetLocation:          "GET_LOCATION",
	OpGetLocationR:         "GET_LOCATION_R",
	OpSetLocation:          "SET_LOCATION",
	OpSetLocationR:         "SET_LOCATION_R",
	OpGetFeatures:          "GET_FEATURES",
	OpGetFeaturesR:         "GET_FEATURES_R",
	OpSetFeature:           "SET_FEATURE",
	OpSetFeatureR:          "SET_FEATURE_R",
	OpChangeMap:            "CHANGE_MAP",
	OpChangeMapR:           "CHANGE_MAP_R",
	OpChangeLink:           "CHANGE_LINK",
	OpChangeLinkR:          "CHANGE_LINK_R",
	OpErrorR:               "ERROR_R",
}

// requestOpcodes lists every opcode a master may send.
var requestOpcodes = []Opcode{
	OpReprogOpen, OpReprogWrite, OpReprogCommit, OpReprogReboot,
	OpGetWuClassList, OpGetWuObjectList, OpReadProperty, OpWriteProperty,
	OpRequestPropertyInit, OpGetLocation, OpSetLocation, OpGetFeatures,
	OpSetFeature, OpChangeMap, OpChangeLink,
}

// RequestOpcodes returns every request opcode of the command set.
func RequestOpcodes() []Opcode {
	return append([]Opcode(nil), requestOpcodes...)
}

// String returns string representation of the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}

	return fmt.Sprintf("OPCODE_0x%02X", uint8(op))
}

// IsRequest reports whether op is a request of the command set.
func (op Opcode) IsRequest() bool {
	for _, r := range requestOpcodes {
		if r == op {
			return true
		}
	}

	return false
}

// Response returns the response opcode paired with a request.
func (op Opcode) Response() Opcode {
	return op + 1
}
