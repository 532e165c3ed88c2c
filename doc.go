// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package natpunch implements a NAT traversal endpoint for a peer-to-peer
// tunnel.
//
// A Session discovers its externally visible (NAT-mapped) address through a
// STUN binding exchange with a remote rendezvous peer. The Scheduler then
// keeps that mapping alive with periodic keepalives, drains inbound
// datagrams, and rebinds when the socket breaks. Discovered mappings and
// inbound connection requests are reported to external tooling through a
// Notifier, usually a ScriptNotifier that runs
//
//	<script> bind <ipv4> <port>
//	<script> cr <last-mapped-ipv4> <last-mapped-port>
//
// without waiting for it. A Runner wraps bind and scheduling into a
// restart loop for unattended daemons.
//
// A Session is owned by exactly one goroutine at a time.
package natpunch
