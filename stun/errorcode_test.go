// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeErrorCode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value []byte
		code  ErrorCode
	}{
		{"Unauthorized", []byte{0, 0, 4, 1}, 401},
		{"WithReason", append([]byte{0, 0, 3, 0}, "Try Alternate"...), 300},
		{"IgnoresHighClassBits", []byte{0xff, 0xff, 0xfd, 0x14}, 520},
		{"NumberNotModulo", []byte{0, 0, 6, 199}, 799},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code, err := DecodeErrorCode(RawAttribute{Type: AttrErrorCode, Value: tc.value})
			require.NoError(t, err)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestDecodeErrorCode_UnexpectedEOF(t *testing.T) {
	_, err := DecodeErrorCode(RawAttribute{Value: []byte{0, 0, 4}})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBuilder_AddErrorCode(t *testing.T) {
	b := NewBuilder(TypeBindingError, testTransactionID())
	require.NoError(t, b.AddErrorCode(CodeStaleNonce, CodeStaleNonce.Reason()))
	m := mustParse(t, b.Bytes())
	a, ok := m.Find(AttrErrorCode)
	require.True(t, ok)
	assert.Equal(t, "Stale Nonce", string(a.Value[errorCodeReasonStart:]))
	code, err := DecodeErrorCode(a)
	require.NoError(t, err)
	assert.Equal(t, CodeStaleNonce, code)

	assert.ErrorIs(t, b.AddErrorCode(CodeBadRequest, strings.Repeat("x", errorCodeReasonMaxB+1)), ErrReasonTooLong)
}

func TestErrorCode_Reason(t *testing.T) {
	assert.Equal(t, "Unauthorized", CodeUnauthorized.Reason())
	assert.Equal(t, "Unknown Error", ErrorCode(599).Reason())
	assert.Equal(t, "401 Unauthorized", CodeUnauthorized.String())
}
