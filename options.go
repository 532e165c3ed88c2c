// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"github.com/benbjohnson/clock"
	"github.com/pion/logging"
)

type options struct {
	loggerFactory logging.LoggerFactory
	notifier      Notifier
	metrics       *Metrics
	clock         clock.Clock
	binder        Binder
	keepalive     KeepaliveSender
}

// Option configures a Session, Scheduler or Runner.
type Option func(o *options)

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.loggerFactory == nil {
		o.loggerFactory = logging.NewDefaultLoggerFactory()
	}
	if o.clock == nil {
		o.clock = clock.New()
	}

	return o
}

// withUDPDefaults fills in the UDP binder for whichever of binder and
// keepalive sender was not supplied. Only components that bind call it.
func (o *options) withUDPDefaults() {
	if o.binder != nil && o.keepalive != nil {
		return
	}
	udp := NewUDPBinder(o.loggerFactory)
	if o.binder == nil {
		o.binder = udp
	}
	if o.keepalive == nil {
		o.keepalive = udp
	}
}

// WithLoggerFactory sets the factory for all loggers.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(o *options) {
		o.loggerFactory = f
	}
}

// WithNotifier sets where mappings and connection requests are reported.
// Without it notifications are only logged.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithBinder replaces the UDP binder.
func WithBinder(b Binder) Option {
	return func(o *options) {
		o.binder = b
	}
}

// WithKeepaliveSender replaces the UDP keepalive sender.
func WithKeepaliveSender(k KeepaliveSender) Option {
	return func(o *options) {
		o.keepalive = k
	}
}
