package wkpf

import (
	"unicode/utf8"

	"github.com/arloliu/go-wkpf/identity"
)

const (
	// firstLocationChunk is the location bytes carried by the offset 0 response,
	// which also carries the total length.
	firstLocationChunk = PayloadCapacity - 4
	// nextLocationChunk is the location bytes carried by later responses.
	nextLocationChunk = PayloadCapacity - 3
)

// handleGetLocation serves GET_LOCATION(offset).
func (d *Dispatcher) handleGetLocation(_ uint32, req Message, reply ReplyFunc) {
	if len(req.Body) < 1 {
		d.malformed(req, reply, 1)
		return
	}

	loc := d.location.Location()
	offset := int(req.Body[0])

	var body []byte
	if offset == 0 {
		body = make([]byte, 0, 1+firstLocationChunk)
		body = append(body, byte(len(loc)))
		body = append(body, loc[:min(firstLocationChunk, len(loc))]...)
	} else if offset < len(loc) {
		body = append([]byte(nil), loc[offset:min(offset+nextLocationChunk, len(loc))]...)
	}

	reply(NewReply(req, body))
}

// handleSetLocation serves SET_LOCATION(offset, total_len, chunk_len, chunk).
//
// Offset 0 starts a new location. Later chunks continue the transfer in the
// scratch buffer; an offset inside the scratch rewinds it and an offset past its
// end is ignored. The accumulated location is applied after every chunk.
func (d *Dispatcher) handleSetLocation(_ uint32, req Message, reply ReplyFunc) {
	if len(req.Body) < 3 {
		d.malformed(req, reply, 3)
		return
	}

	offset := int(req.Body[0])
	total := int(req.Body[1])
	chunk := req.Body[3:]
	if n := int(req.Body[2]); n < len(chunk) {
		chunk = chunk[:n]
	}

	switch {
	case offset == 0:
		d.scratch = append(d.scratch[:0], chunk...)
	case offset <= len(d.scratch):
		d.scratch = append(d.scratch[:offset], chunk...)
	default:
		d.logger.Warn("location chunk leaves a gap, ignored", "offset", offset, "have", len(d.scratch))
		reply(NewReply(req, []byte{0}))

		return
	}

	if total > 0 {
		d.scratch = cutLocation(d.scratch, total)
	}
	d.scratch = cutLocation(d.scratch, identity.MaxLocationLen)

	if err := d.location.SetLocation(d.scratch); err != nil {
		d.logger.Error("failed to set location", "error", err)
	} else {
		d.logger.Info("location updated", "location", string(d.scratch), "total", total)
	}

	reply(NewReply(req, []byte{0}))
}

// cutLocation shortens loc to at most n bytes, backing off to a rune start so
// a multi-byte character is not split.
func cutLocation(loc []byte, n int) []byte {
	if len(loc) <= n {
		return loc
	}

	cut := n
	for i := 0; i < utf8.UTFMax-1 && cut > 0 && !utf8.RuneStart(loc[cut]); i++ {
		cut--
	}
	if !utf8.RuneStart(loc[cut]) {
		cut = n
	}

	return loc[:cut]
}
