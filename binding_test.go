// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"net/netip"
	"testing"

	"github.com/pion/natpunch/stun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleBindingError(t *testing.T) {
	n := &recordingNotifier{}
	s, c := newTestSession(t, WithNotifier(n))
	c.push(bindingSuccess(t, testID, "203.0.113.7", 12345, true))
	require.NoError(t, s.Receive())
	c.push(bindingError(t, testID, stun.CodeUnauthorized))

	require.NoError(t, s.Receive())
	assert.Equal(t, MapError, s.Status.MapStatus)
	assert.Equal(t, stun.CodeUnauthorized, s.Status.MapError)
	assert.False(t, s.Status.MappedAddr.IsValid(), "mapping must be cleared")
	assert.Equal(t, testID, s.Status.ExpectedTransactionID)
	assert.Len(t, n.all(), 1, "error responses do not notify")
}

func TestHandleBindingError_Codes(t *testing.T) {
	for _, code := range []stun.ErrorCode{
		stun.CodeTryAlternate, stun.CodeBadRequest, stun.CodeStaleNonce, stun.CodeServerError, 699,
	} {
		t.Run(code.String(), func(t *testing.T) {
			s, c := newTestSession(t)
			c.push(bindingError(t, testID, code))

			require.NoError(t, s.Receive())
			assert.Equal(t, code, s.Status.MapError)
		})
	}
}

func TestHandleBindingError_NoAttribute(t *testing.T) {
	s, c := newTestSession(t)
	c.push(stun.NewBuilder(stun.TypeBindingError, testID).Bytes())

	assert.ErrorIs(t, s.Receive(), ErrNoData)
	assert.Equal(t, MapUninitialized, s.Status.MapStatus)
}

func TestHandleBindingSuccess_NoAttribute(t *testing.T) {
	n := &recordingNotifier{}
	s, c := newTestSession(t, WithNotifier(n))
	b := stun.NewBuilder(stun.TypeBindingSuccess, testID)
	b.AddSoftware("rendezvous")
	c.push(b.Bytes())

	assert.ErrorIs(t, s.Receive(), ErrNoData)
	assert.Equal(t, MapUninitialized, s.Status.MapStatus)
	assert.Empty(t, n.all())
}

func TestHandleBindingSuccess_Truncated(t *testing.T) {
	s, c := newTestSession(t)
	b := stun.NewBuilder(stun.TypeBindingSuccess, testID)
	b.Add(stun.AttrXORMappedAddress, []byte{0, stun.FamilyIPv4, 1})
	c.push(b.Bytes())

	assert.ErrorIs(t, s.Receive(), ErrNoData)
	assert.Equal(t, MapUninitialized, s.Status.MapStatus)
}

func TestHandleBindingSuccess_IPv6(t *testing.T) {
	for _, xored := range []bool{false, true} {
		n := &recordingNotifier{}
		s, c := newTestSession(t, WithNotifier(n))
		b := stun.NewBuilder(stun.TypeBindingSuccess, testID)
		if xored {
			require.NoError(t, b.AddXORMappedAddress(netip.MustParseAddr("2001:db8::1"), 9))
		} else {
			require.NoError(t, b.AddMappedAddress(netip.MustParseAddr("2001:db8::1"), 9))
		}
		c.push(b.Bytes())

		assert.ErrorIs(t, s.Receive(), ErrUnsupported)
		assert.Equal(t, MapUninitialized, s.Status.MapStatus)
		assert.Empty(t, n.all())
	}
}
