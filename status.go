// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"fmt"

	"github.com/pkg/errors"
)

// StatusType is the severity of a Status.
type StatusType byte

const (
	// StatusTypeOK means the operation succeeded
	StatusTypeOK = StatusType(0)
	// StatusTypeWarning means the operation succeeded with a warning
	StatusTypeWarning = StatusType(1)
	// StatusTypeError means the operation failed
	StatusTypeError = StatusType(2)
	// StatusTypeFatal means the operation failed and the peer is unlikely to recover
	StatusTypeFatal = StatusType(3)
)

// statusOKMarker is the single byte encoding of a plain OK status.
const statusOKMarker = byte(0xFF)

var statusTypeTexts = map[StatusType]string{
	StatusTypeOK:      "OK",
	StatusTypeWarning: "WARNING",
	StatusTypeError:   "ERROR",
	StatusTypeFatal:   "FATAL",
}

func (st StatusType) String() string {
	if s, ok := statusTypeTexts[st]; ok {
		return s
	}
	return fmt.Sprintf("StatusType(%d)", byte(st))
}

// Status is the outcome record a peer attaches to responses.
type Status struct {
	Type     StatusType
	Message  string
	CallTree string
}

// StatusOK is the plain success status.
var StatusOK = Status{}

// IsOK returns true if the status type is StatusTypeOK.
func (s Status) IsOK() bool {
	return s.Type == StatusTypeOK
}

// IsSuccess returns true for OK and warning statuses.
func (s Status) IsSuccess() bool {
	return s.Type == StatusTypeOK || s.Type == StatusTypeWarning
}

func (s Status) String() string {
	if s.Message == "" {
		return fmt.Sprintf("[Status %v]", s.Type)
	}
	return fmt.Sprintf("[Status %v %q]", s.Type, s.Message)
}

// StatusError is the error form of an unsuccessful Status.
type StatusError struct {
	Status Status
}

func (e StatusError) Error() string {
	if e.Status.Message == "" {
		return fmt.Sprintf("pva: status %v", e.Status.Type)
	}
	return fmt.Sprintf("pva: status %v: %s", e.Status.Type, e.Status.Message)
}

// Err returns nil if the status is a success, or a StatusError otherwise.
func (s Status) Err() error {
	if s.IsSuccess() {
		return nil
	}
	return StatusError{Status: s}
}

// WriteStatus appends the encoded Status.
func (fd *FrameData) WriteStatus(s Status) {
	if s.Type == StatusTypeOK && s.Message == "" && s.CallTree == "" {
		*fd = append(*fd, statusOKMarker)
		return
	}
	*fd = append(*fd, byte(s.Type))
	fd.WriteString(s.Message)
	fd.WriteString(s.CallTree)
}

// ReadStatus reads an encoded Status.
func (fp *FrameParser) ReadStatus() (s Status, err error) {
	var b byte
	if b, err = fp.ReadByte(); err != nil {
		return
	}
	if b == statusOKMarker {
		return StatusOK, nil
	}
	if b > byte(StatusTypeFatal) {
		return s, errors.Wrapf(ProtocolError{}, "invalid status type %d", b)
	}
	s.Type = StatusType(b)
	if s.Message, _, err = fp.ReadString(); err == nil {
		s.CallTree, _, err = fp.ReadString()
	}
	return
}
