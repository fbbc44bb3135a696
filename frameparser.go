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

// FrameParser implements reading frame payload from a byte slice.
// Multi-byte values are decoded in the byte order of the frame.
type FrameParser struct {
	b     []byte
	order binary.ByteOrder
}

// NewFrameParser returns a FrameParser for the payload of a FrameData.
func NewFrameParser(fd FrameData) *FrameParser {
	return &FrameParser{b: fd.Payload(), order: fd.Header().ByteOrder()}
}

// NewFrameParserBytes returns a FrameParser over b using the given byte order.
func NewFrameParserBytes(b []byte, order binary.ByteOrder) *FrameParser {
	return &FrameParser{b: b, order: order}
}

func (fp *FrameParser) String() string {
	switch {
	case len(fp.b) < 1:
		return "[FrameParser 0]"
	case len(fp.b) < 32:
		return fmt.Sprintf("[FrameParser %v %v]", len(fp.b), hex.EncodeToString(fp.b))
	default:
		return fmt.Sprintf("[FrameParser %v %v...]", len(fp.b), hex.EncodeToString(fp.b[:32]))
	}
}

// Remaining returns the number of unread bytes.
func (fp *FrameParser) Remaining() int {
	return len(fp.b)
}

// Bytes returns the unread bytes without consuming them.
func (fp *FrameParser) Bytes() []byte {
	return fp.b
}

// ByteOrder returns the byte order used to decode multi-byte values.
func (fp *FrameParser) ByteOrder() binary.ByteOrder {
	return fp.order
}

func (fp *FrameParser) ensure(n int) error {
	if len(fp.b) < n {
		return errors.Wrapf(io.ErrUnexpectedEOF, "need %d bytes, have %d", n, len(fp.b))
	}
	return nil
}

func (fp *FrameParser) Read(p []byte) (n int, err error) {
	if len(fp.b) == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	n = copy(p, fp.b)
	fp.b = fp.b[n:]
	return
}

// ReadByte reads a single byte.
func (fp *FrameParser) ReadByte() (b byte, err error) {
	if err = fp.ensure(1); err == nil {
		b = fp.b[0]
		fp.b = fp.b[1:]
	}
	return
}

// ReadInt32 reads an int32.
func (fp *FrameParser) ReadInt32() (x int32, err error) {
	if err = fp.ensure(4); err == nil {
		x = int32(fp.order.Uint32(fp.b))
		fp.b = fp.b[4:]
	}
	return
}

// ReadSize reads a size in the protocol's compact encoding.
// The NULL marker is returned as -1.
func (fp *FrameParser) ReadSize() (n int, err error) {
	var b byte
	if b, err = fp.ReadByte(); err != nil {
		return
	}
	switch b {
	case 0xFF:
		return -1, nil
	case 0xFE:
		var x int32
		if x, err = fp.ReadInt32(); err == nil {
			if x < 0 {
				err = errors.WithStack(ErrLengthNegative)
			}
			n = int(x)
		}
		return
	default:
		return int(b), nil
	}
}

// ReadString reads a size prefixed string. A NULL string
// is returned as the empty string with isNull set.
func (fp *FrameParser) ReadString() (s string, isNull bool, err error) {
	var n int
	if n, err = fp.ReadSize(); err != nil {
		return
	}
	if n < 0 {
		return "", true, nil
	}
	if err = fp.ensure(n); err == nil {
		s = string(fp.b[:n])
		fp.b = fp.b[n:]
	}
	return
}
