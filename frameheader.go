// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

// frameheader.go

// A frame header consists of eight bytes. First byte is the magic value
// 0xCA, second is the protocol version, third holds the flags and fourth
// the command code. The last four bytes are the payload size, encoded in
// the byte order given by the flags.
//
// If the control flag is set, the frame has no payload and the size bytes
// carry control data instead.

package pva

import (
	"encoding/binary"
	"fmt"
)

/*

The flags byte is laid out as follows (bit 0 is the LSB):

* bit 0   - control message if set, application message otherwise
* bit 1-3 - reserved
* bit 4-5 - segmentation, 00 means not segmented
* bit 6   - direction, set if the message was sent by a server
* bit 7   - byte order, set for big endian

*/
type FrameHeader []byte

// FrameFlag enumerates the flags used in the frame header flags byte.
type FrameFlag byte

const (
	// FrameFlagControl marks a control message.
	FrameFlagControl FrameFlag = 0x01
	// FrameFlagSegmentMask covers the two segmentation bits.
	FrameFlagSegmentMask FrameFlag = 0x30
	// FrameFlagFromServer is set on messages sent by a server.
	FrameFlagFromServer FrameFlag = 0x40
	// FrameFlagBigEndian is set when the payload is big endian.
	FrameFlagBigEndian FrameFlag = 0x80
)

var frameFlagTexts = map[FrameFlag]string{
	(0):                                     "..",
	(FrameFlagControl):                      ".C",
	(FrameFlagFromServer):                   "S.",
	(FrameFlagFromServer | FrameFlagControl): "SC",
}

func (fh FrameHeader) String() string {
	var midText string
	if fh.IsControl() {
		midText = fh.ControlCommand().String()
	} else {
		midText = fh.Command().String()
	}
	order := "LE"
	if fh.IsBigEndian() {
		order = "BE"
	}
	return fmt.Sprintf("[FrameHeader v%d %s %s %s %d (%d)]",
		fh.Version(), frameFlagTexts[fh.Flags()&(FrameFlagFromServer|FrameFlagControl)], order, midText, fh.SizeValue(), len(fh))
}

// IsValid returns true if the magic byte is correct.
func (fh FrameHeader) IsValid() bool {
	return fh[0] == FrameMagic
}

// Version returns the protocol version of the sender.
func (fh FrameHeader) Version() byte {
	return fh[1]
}

// Flags returns the raw flags byte.
func (fh FrameHeader) Flags() FrameFlag {
	return FrameFlag(fh[2])
}

// SetFlags replaces the flags byte.
func (fh FrameHeader) SetFlags(f FrameFlag) {
	fh[2] = byte(f)
}

// IsControl returns true if the frame is a control message.
func (fh FrameHeader) IsControl() bool {
	return fh.Flags()&FrameFlagControl == FrameFlagControl
}

// IsSegmented returns true if any of the segmentation bits are set.
func (fh FrameHeader) IsSegmented() bool {
	return fh.Flags()&FrameFlagSegmentMask != 0
}

// IsFromServer returns true if the direction bit is set.
func (fh FrameHeader) IsFromServer() bool {
	return fh.Flags()&FrameFlagFromServer == FrameFlagFromServer
}

// IsBigEndian returns true if the byte order bit is set.
func (fh FrameHeader) IsBigEndian() bool {
	return fh.Flags()&FrameFlagBigEndian == FrameFlagBigEndian
}

// ByteOrder returns the byte order used for the size value and payload.
func (fh FrameHeader) ByteOrder() binary.ByteOrder {
	if fh.IsBigEndian() {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Command returns the command code as a Command.
// Only valid for application messages where IsControl() returns false.
func (fh FrameHeader) Command() Command {
	return Command(fh[3])
}

// ControlCommand returns the command code as a ControlCommand.
// Only valid for control messages where IsControl() returns true.
func (fh FrameHeader) ControlCommand() ControlCommand {
	return ControlCommand(fh[3])
}

// SetCommand sets an application command and clears the control flag.
func (fh FrameHeader) SetCommand(cmd Command) {
	fh[2] &^= byte(FrameFlagControl)
	fh[3] = byte(cmd)
}

// SetControlCommand sets a control command and the control flag.
func (fh FrameHeader) SetControlCommand(cmd ControlCommand) {
	fh[2] |= byte(FrameFlagControl)
	fh[3] = byte(cmd)
}

// SizeValue returns the 32-bit size value. For application messages this
// is the payload size, for control messages it is control data.
func (fh FrameHeader) SizeValue() int {
	return int(int32(fh.ByteOrder().Uint32(fh[4:8])))
}

// SetSizeValue sets the 32-bit size value using the header's byte order.
func (fh FrameHeader) SetSizeValue(n int) {
	fh.ByteOrder().PutUint32(fh[4:8], uint32(int32(n)))
}

// PayloadSize returns the number of payload bytes following the header.
func (fh FrameHeader) PayloadSize() (n int) {
	if !fh.IsControl() {
		n = fh.SizeValue()
	}
	return
}

// Clear zeroes out the frameheader bytes.
func (fh FrameHeader) Clear() {
	for i := range fh[:FrameHeaderSize] {
		fh[i] = 0
	}
}

// ClearCommand resets the header to an outbound big endian
// client message with the given command and a zero size.
func (fh FrameHeader) ClearCommand(cmd Command) {
	fh.Clear()
	fh[0] = FrameMagic
	fh[1] = ProtocolVersion
	fh.SetFlags(FrameFlagBigEndian)
	fh.SetCommand(cmd)
}

// AppendFrameHeader appends an outbound header for cmd to b.
func AppendFrameHeader(b []byte, cmd Command) []byte {
	b = append(b, FrameMagic, ProtocolVersion, byte(FrameFlagBigEndian), byte(cmd), 0, 0, 0, 0)
	return b
}
