// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package testutil contains helpers and utilities for writing tests
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ShouldNotAllocate fails if f allocates.
func ShouldNotAllocate(t *testing.T, f func()) {
	t.Helper()

	if Race {
		t.Skip("race detector instrumentation allocates")
	}
	if allocs := testing.AllocsPerRun(100, f); allocs != 0 {
		assert.Failf(t, "unexpected allocations", "%v allocations per run", allocs)
	}
}
