// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package natpunch

import (
	"context"
	"errors"
	"net"

	"github.com/pion/logging"
)

var errUnsupportedPlatform = errors.New("natpunch: platform does not support non-blocking UDP receive")

type udpConn struct {
	PacketConn
}

func listenUDP(context.Context, uint16, *net.UDPAddr, int, logging.LeveledLogger) (*udpConn, error) {
	return nil, errUnsupportedPlatform
}
