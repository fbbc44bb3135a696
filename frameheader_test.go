package pva

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func getHeader(t *testing.T) (h FrameHeader) {
	fd := NewFrameData()
	fd.WriteHeader(CommandGet)
	assert.NotNil(t, fd)
	assert.Equal(t, FrameHeaderSize, len(fd))
	h = fd.Header()
	assert.NotNil(t, h)
	return
}

func Test_FrameHeader_Outbound(t *testing.T) {
	h := getHeader(t)
	assert.True(t, h.IsValid())
	assert.Equal(t, ProtocolVersion, h.Version())
	assert.False(t, h.IsControl())
	assert.False(t, h.IsSegmented())
	assert.False(t, h.IsFromServer())
	assert.True(t, h.IsBigEndian())
	assert.Equal(t, binary.ByteOrder(binary.BigEndian), h.ByteOrder())
	assert.Equal(t, CommandGet, h.Command())
	assert.Equal(t, 0, h.PayloadSize())
}

func Test_FrameHeader_SizeValue(t *testing.T) {
	h := getHeader(t)
	h.SetSizeValue(0x01020304)
	assert.Equal(t, []byte{1, 2, 3, 4}, []byte(h[4:8]))
	assert.Equal(t, 0x01020304, h.PayloadSize())

	h.SetFlags(0)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), h.ByteOrder())
	assert.Equal(t, 0x04030201, h.SizeValue())
	h.SetSizeValue(-1)
	assert.Equal(t, -1, h.SizeValue())
}

func Test_FrameHeader_Control(t *testing.T) {
	h := getHeader(t)
	h.SetControlCommand(ControlEchoRequest)
	h.SetSizeValue(12)
	assert.True(t, h.IsControl())
	assert.Equal(t, ControlEchoRequest, h.ControlCommand())
	assert.Equal(t, 12, h.SizeValue())
	assert.Equal(t, 0, h.PayloadSize())
	h.SetCommand(CommandRPC)
	assert.False(t, h.IsControl())
	assert.Equal(t, 12, h.PayloadSize())
}

func Test_FrameHeader_String(t *testing.T) {
	h := getHeader(t)
	assert.Equal(t, "[FrameHeader v2 .. BE Get 0 (8)]", h.String())
	h.SetFlags(FrameFlagFromServer)
	h.SetControlCommand(ControlEchoRequest)
	h.SetSizeValue(3)
	assert.Equal(t, "[FrameHeader v2 SC LE EchoRequest 3 (8)]", h.String())
	h.ClearCommand(Command(0x77))
	assert.Equal(t, "[FrameHeader v2 .. BE Command(0x77) 0 (8)]", h.String())
}

func Test_FrameHeader_Segmented(t *testing.T) {
	h := getHeader(t)
	h.SetFlags(h.Flags() | 0x20)
	assert.True(t, h.IsSegmented())
	h.Clear()
	assert.False(t, h.IsValid())
	assert.False(t, h.IsSegmented())
}
