// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package natpunch

import "syscall"

func detachedProcAttr() *syscall.SysProcAttr {
	return nil
}
