// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build race

package testutil

// Race is true when tests are built with the race detector, which makes
// allocation counts meaningless.
const Race = true
