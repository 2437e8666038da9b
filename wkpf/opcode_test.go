package wkpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcode_ResponsePairing(t *testing.T) {
	for _, op := range RequestOpcodes() {
		t.Run(op.String(), func(t *testing.T) {
			resp := op.Response()
			assert.Equal(t, uint8(op)+1, uint8(resp))
			assert.NotEqual(t, OpErrorR, resp)
			assert.True(t, op.IsRequest())
			assert.False(t, resp.IsRequest())
			assert.Equal(t, op.String()+"_R", resp.String())
		})
	}

	assert.False(t, OpErrorR.IsRequest())
	assert.Equal(t, "OPCODE_0x42", Opcode(0x42).String())
}

func TestMessage_EncodeDecode(t *testing.T) {
	msg := Message{Opcode: OpGetLocation, Seq: 0x1234, Body: []byte{0x05}}
	data := msg.Encode()
	assert.Equal(t, []byte{0x9A, 0x34, 0x12, 0x05}, data)

	decoded, err := DecodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)

	_, err = DecodeMessage([]byte{0x9A, 0x01})
	require.ErrorIs(t, err, ErrShortMessage)
}

func TestMessage_Replies(t *testing.T) {
	req := Message{Opcode: OpSetLocation, Seq: 77}

	r := NewReply(req, []byte{0})
	assert.Equal(t, OpSetLocationR, r.Opcode)
	assert.Equal(t, uint16(77), r.Seq)

	e := NewErrorReply(req, ErrCodeMalformed)
	assert.Equal(t, OpErrorR, e.Opcode)
	assert.Equal(t, uint16(77), e.Seq)
	assert.Equal(t, []byte{byte(OpSetLocation), byte(ErrCodeMalformed)}, e.Body)
}
