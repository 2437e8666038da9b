package wkpf

import (
	"encoding/binary"
	"errors"

	"github.com/arloliu/go-wkpf/reprog"
)

// handleReprogOpen serves REPROG_OPEN. The file id argument is ignored.
func (d *Dispatcher) handleReprogOpen(_ uint32, req Message, reply ReplyFunc) {
	capacity := d.engine.Open()
	d.logger.Info("reprogramming transfer opened", "capacity", capacity)

	reply(NewReply(req, []byte{byte(reprog.StatusOK), byte(capacity), byte(capacity >> 8)}))
}

// handleReprogWrite serves REPROG_WRITE(pos, chunk).
func (d *Dispatcher) handleReprogWrite(_ uint32, req Message, reply ReplyFunc) {
	if len(req.Body) < 2 {
		d.malformed(req, reply, 2)
		return
	}

	pos := int(binary.LittleEndian.Uint16(req.Body))
	chunk := req.Body[2:]

	status := reprog.StatusOK
	if err := d.engine.Write(pos, chunk); err != nil {
		switch {
		case errors.Is(err, reprog.ErrWriteOverrun):
			status = reprog.StatusTooLarge
		default:
			status = reprog.StatusFailed
		}
		d.logger.Warn("reprogramming write rejected", "pos", pos, "len", len(chunk), "status", status.String(), "error", err)
	}

	reply(NewReply(req, []byte{byte(status)}))
}

// handleReprogCommit serves REPROG_COMMIT. The acknowledgment is sent before the
// committed bytes are parsed; a parse failure is reported by an additional ERROR_R.
func (d *Dispatcher) handleReprogCommit(src uint32, req Message, reply ReplyFunc) {
	if !d.engine.Active() {
		d.logger.Warn("commit without open transfer", "src", src)
		reply(NewReply(req, []byte{byte(reprog.StatusFailed)}))

		return
	}

	reply(NewReply(req, []byte{byte(reprog.StatusOK)}))

	res, err := d.engine.Commit()
	if err != nil {
		d.logger.Error("commit failed", "error", err)
		return
	}

	for _, t := range res.Tables {
		d.logger.Debug("section parsed", "type", t.SectionType().String())
	}
	if res.Err != nil {
		d.logger.Warn("reprogramming parse failed", "filled", res.FilledLen, "tables", len(res.Tables), "error", res.Err)
		reply(NewErrorReply(req, ErrCodeParseFailed))
	} else {
		d.logger.Info("reprogramming committed", "filled", res.FilledLen, "tables", len(res.Tables))
	}

	d.mu.Lock()
	d.lastCommit = res
	d.mu.Unlock()

	if d.onCommit != nil {
		d.onCommit(src, res)
	}
}

// handleReprogReboot serves REPROG_REBOOT.
func (d *Dispatcher) handleReprogReboot(src uint32, req Message, reply ReplyFunc) {
	reply(NewReply(req, []byte{byte(reprog.StatusOK)}))

	d.logger.Info("reboot requested", "src", src)
	if d.onReboot != nil {
		d.onReboot(src)
	}
}
