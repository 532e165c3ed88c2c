// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"fmt"
)

// Error is error type for constant errors in stun package.
//
// See http://dave.cheney.net/2016/04/07/constant-errors for more info.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrUnexpectedHeaderEOF means that there were not enough bytes in
	// the buffer to read header.
	ErrUnexpectedHeaderEOF Error = "unexpected EOF: not enough bytes to read header"

	// ErrAttributeNotFound means that there is no such attribute.
	ErrAttributeNotFound Error = "attribute not found"

	// ErrUnsupportedFamily means that a mapped address uses a family
	// this package does not decode (IPv6).
	ErrUnsupportedFamily Error = "unsupported address family"

	// ErrReasonTooLong means that error reason is too long.
	ErrReasonTooLong Error = "error reason is too long"
)

// DecodeErr records an error and place when it is occurred.
type DecodeErr struct {
	Place   DecodeErrPlace
	Message string
	Err     error
}

// IsPlaceParent reports if error place parent is p.
func (e DecodeErr) IsPlaceParent(p string) bool {
	return e.Place.Parent == p
}

// IsPlaceChildren reports if error place children is c.
func (e DecodeErr) IsPlaceChildren(c string) bool {
	return e.Place.Children == c
}

// IsPlace reports if error place is p.
func (e DecodeErr) IsPlace(p DecodeErrPlace) bool {
	return e.Place == p
}

// Unwrap returns the underlying cause, if any.
func (e DecodeErr) Unwrap() error {
	return e.Err
}

// DecodeErrPlace records a place where error is occurred.
type DecodeErrPlace struct {
	Parent   string
	Children string
}

func (p DecodeErrPlace) String() string {
	return fmt.Sprintf("%s/%s", p.Parent, p.Children)
}

func (e DecodeErr) Error() string {
	return fmt.Sprintf("BadFormat for %s: %s",
		e.Place,
		e.Message,
	)
}

func newDecodeErr(parent, children, message string) DecodeErr {
	return DecodeErr{
		Place:   DecodeErrPlace{Parent: parent, Children: children},
		Message: message,
	}
}

func newEOFDecodeErr(parent, children string, err error) DecodeErr {
	return DecodeErr{
		Place:   DecodeErrPlace{Parent: parent, Children: children},
		Message: err.Error(),
		Err:     err,
	}
}
