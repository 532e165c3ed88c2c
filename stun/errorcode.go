// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"fmt"
	"io"
)

// ErrorCode is code for ERROR-CODE attribute.
type ErrorCode int

// Possible error codes.
const (
	CodeTryAlternate     ErrorCode = 300
	CodeBadRequest       ErrorCode = 400
	CodeUnauthorized     ErrorCode = 401
	CodeUnknownAttribute ErrorCode = 420
	CodeStaleNonce       ErrorCode = 438
	CodeRoleConflict     ErrorCode = 487
	CodeServerError      ErrorCode = 500
)

var errorReasons = map[ErrorCode]string{ //nolint:gochecknoglobals
	CodeTryAlternate:     "Try Alternate",
	CodeBadRequest:       "Bad Request",
	CodeUnauthorized:     "Unauthorized",
	CodeUnknownAttribute: "Unknown Attribute",
	CodeStaleNonce:       "Stale Nonce",
	CodeServerError:      "Server Error",
	CodeRoleConflict:     "Role Conflict",
}

// Reason returns recommended reason string.
func (c ErrorCode) Reason() string {
	reason, ok := errorReasons[c]
	if !ok {
		return "Unknown Error"
	}

	return reason
}

func (c ErrorCode) String() string {
	return fmt.Sprintf("%d %s", int(c), c.Reason())
}

// constants for ERROR-CODE encoding.
const (
	errorCodeReasonStart = 4
	errorCodeClassMask   = 0x07
	errorCodeNumberMask  = 0xff
	errorCodeClassShift  = 8
	errorCodeReasonMaxB  = 763
	errorCodeModulo      = 100
)

// DecodeErrorCode decodes the numeric code of an ERROR-CODE attribute.
//
// The class occupies the low 3 bits of the third byte and the number the
// fourth byte; code = class*100 + number. The reason phrase is ignored.
func DecodeErrorCode(a RawAttribute) (ErrorCode, error) {
	v := a.Value
	if len(v) < errorCodeReasonStart {
		return 0, newEOFDecodeErr("error code", "value", io.ErrUnexpectedEOF)
	}
	packed := bin.Uint32(v[0:errorCodeReasonStart])
	class := (packed >> errorCodeClassShift) & errorCodeClassMask
	number := packed & errorCodeNumberMask

	return ErrorCode(class*errorCodeModulo + number), nil //nolint:gosec // G115, at most 7*100+255
}

// appendErrorCodeValue writes ERROR-CODE value to dst.
func appendErrorCodeValue(dst []byte, code ErrorCode, reason string) ([]byte, error) {
	if len(reason) > errorCodeReasonMaxB {
		return nil, ErrReasonTooLong
	}
	number := byte(code % errorCodeModulo) // error code modulo 100
	class := byte(code / errorCodeModulo)  // hundred digit
	dst = append(dst, 0, 0, class&errorCodeClassMask, number)

	return append(dst, reason...), nil
}
