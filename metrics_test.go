// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"testing"

	"github.com/pion/natpunch/stun"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	n := &recordingNotifier{}
	s, c := newTestSession(t, WithMetrics(m), WithNotifier(n))
	other := testID
	other[5]++
	c.push(bindingSuccess(t, testID, "203.0.113.7", 12345, true))
	c.push(bindingSuccess(t, other, "203.0.113.7", 12345, true))
	c.push([]byte("knock"))
	c.push(bindingError(t, testID, stun.CodeUnauthorized))
	c.pushErr(errFake)
	for {
		if err := s.Receive(); err != nil && IsConnBroken(err) {
			break
		}
	}

	for kind, want := range map[datagramKind]float64{
		datagramBindingSuccess:   1,
		datagramWrongTransaction: 1,
		datagramConnRequest:      1,
		datagramBindingError:     1,
		datagramReceiveFailure:   1,
		datagramIgnored:          0,
	} {
		assert.Equal(t, want, promtest.ToFloat64(m.datagrams[kind]), datagramLabels[kind])
	}
	assert.Equal(t, float64(2), promtest.ToFloat64(m.notifications))
	assert.Equal(t, float64(0), promtest.ToFloat64(m.mapped), "error response clears the mapping")

	n.err = errFake
	c.push([]byte("knock"))
	assert.NoError(t, s.Receive())
	assert.Equal(t, float64(1), promtest.ToFloat64(m.spawnFailures))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.datagram(datagramIgnored)
		m.keepalive()
		m.rebind()
		m.notification(true)
		m.setMapped(true)
	})
}
