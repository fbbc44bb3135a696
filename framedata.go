// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrLengthNegative is returned for sizes less than -1.
	ErrLengthNegative = errors.New("length negative")
	// ErrFrameTooBig means a frame with more than FrameMaxPayloadSize bytes occured
	ErrFrameTooBig = errors.New("pva: frame too big")
	// ErrBadMagic means a frame header did not start with FrameMagic.
	ErrBadMagic = errors.New("pva: bad frame magic")
)

// frameDataInitialCap is the initial capacity of a new FrameData.
// Frames larger than this grow on demand up to FrameMaxSize.
const frameDataInitialCap = 0x4000

// FrameData is a byte array used as a network data frame. Outbound
// FrameData may hold several complete messages back to back.
type FrameData []byte

// NewFrameData allocates a new, empty FrameData.
func NewFrameData() FrameData {
	return FrameData(make([]byte, 0, frameDataInitialCap))
}

// NewFrameDataCommand allocates a new FrameData with a header for cmd.
func NewFrameDataCommand(cmd Command) FrameData {
	fd := NewFrameData()
	fd.WriteHeader(cmd)
	return fd
}

// Clear removes everything in a frame
func (fd *FrameData) Clear() {
	*fd = (*fd)[:0]
}

func (fd FrameData) String() string {
	if len(fd) < FrameHeaderSize {
		return fmt.Sprintf("[FrameData %v]", hex.EncodeToString(fd))
	}
	var contents string
	if len(fd) > FrameHeaderSize+32 {
		contents = hex.EncodeToString(fd[FrameHeaderSize:FrameHeaderSize+32]) + "..."
	} else {
		contents = hex.EncodeToString(fd[FrameHeaderSize:])
	}
	return fmt.Sprintf("[FrameData %v %v]", fd.Header(), contents)
}

// Header returns the FrameHeader of the first message in a FrameData.
func (fd FrameData) Header() FrameHeader {
	return FrameHeader(fd[:FrameHeaderSize])
}

// Payload returns the payload of the first message as a byte slice.
func (fd FrameData) Payload() []byte {
	return fd[FrameHeaderSize:]
}

// Buffered returns the number of bytes that have been written to the
// frame, including the header size.
func (fd FrameData) Buffered() int {
	return len(fd)
}

// Write implements io.Writer for FrameData.
func (fd *FrameData) Write(p []byte) (n int, err error) {
	*fd = append(*fd, p...)
	return len(p), nil
}

// WriteHeader initializes the frame header, discarding any previous contents.
func (fd *FrameData) WriteHeader(cmd Command) {
	*fd = AppendFrameHeader((*fd)[:0], cmd)
}

// WriteByte appends a single byte.
func (fd *FrameData) WriteByte(b byte) error {
	*fd = append(*fd, b)
	return nil
}

// WriteInt32 appends a big endian int32.
func (fd *FrameData) WriteInt32(x int32) {
	*fd = binary.BigEndian.AppendUint32(*fd, uint32(x))
}

// WriteSize writes a size using the protocol's compact encoding.
// A size of -1 is the NULL marker.
func (fd *FrameData) WriteSize(x int) error {
	switch {
	case x < -1:
		return ErrLengthNegative
	case x == -1:
		*fd = append(*fd, 0xFF)
	case x < 254:
		*fd = append(*fd, byte(x))
	default:
		*fd = append(*fd, 0xFE)
		fd.WriteInt32(int32(x))
	}
	return nil
}

// WriteString writes a size prefixed string to a FrameData.
func (fd *FrameData) WriteString(s string) {
	_ = fd.WriteSize(len(s))
	*fd = append(*fd, s...)
}

// WriteStringNull writes a NULL string to a FrameData. A NULL string
// is distinct from an empty string.
func (fd *FrameData) WriteStringNull() {
	*fd = append(*fd, 0xFF)
}

// ReadFrom reads exactly one message from an io.Reader.
// Implements io.ReaderFrom interface for FrameData.
func (fd *FrameData) ReadFrom(r io.Reader) (n int64, err error) {
	var num int // needed to let ReadFrom/ReadFull integrate well.

	if cap(*fd) < FrameHeaderSize {
		*fd = make([]byte, 0, frameDataInitialCap)
	}
	*fd = (*fd)[:FrameHeaderSize]
	num, err = io.ReadFull(r, *fd)
	n = int64(num)
	if err != nil {
		*fd = (*fd)[:num]
		return
	}
	fh := fd.Header()
	if !fh.IsValid() {
		return n, errors.Wrapf(ProtocolError{}, "%v: %v", ErrBadMagic, fh)
	}
	size := fh.PayloadSize()
	if size < 0 || size > FrameMaxPayloadSize {
		return n, errors.Wrapf(ProtocolError{}, "%v: %v", ErrFrameTooBig, fh)
	}
	if size > 0 {
		total := FrameHeaderSize + size
		if cap(*fd) < total {
			grown := make([]byte, FrameHeaderSize, total)
			copy(grown, *fd)
			*fd = grown
		}
		*fd = (*fd)[:total]
		num, err = io.ReadFull(r, (*fd)[FrameHeaderSize:])
		n += int64(num)
		*fd = (*fd)[:FrameHeaderSize+num]
	}
	return
}

// WriteTo implements io.WriterTo for FrameData.
func (fd FrameData) WriteTo(w io.Writer) (int64, error) {
	n := 0
	for n < len(fd) {
		m, err := w.Write(fd[n:])
		n += m
		if err != nil {
			return int64(n), err
		}
	}
	return int64(n), nil
}
