// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pion/logging"
)

// Binder (re)establishes the session socket and starts a binding exchange.
// It must release the previous socket and reset Status.
type Binder interface {
	Bind(ctx context.Context, s *Session) error
}

// KeepaliveSender refreshes the NAT mapping. It is called twice per
// keepalive deadline, first with alt false, then with alt true.
type KeepaliveSender interface {
	Ping(s *Session, alt bool) error
}

// State is the scheduler state.
type State int

// Scheduler states.
const (
	StateWaiting State = iota
	StateDraining
	StateRebinding
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateDraining:
		return "draining"
	case StateRebinding:
		return "rebinding"
	default:
		return "unknown"
	}
}

// Scheduler multiplexes socket readability and keepalive deadlines in a
// single blocking wait.
type Scheduler struct {
	session   *Session
	binder    Binder
	keepalive KeepaliveSender
	clock     clock.Clock
	metrics   *Metrics
	log       logging.LeveledLogger

	state         State
	nextKeepalive time.Time
}

// NewScheduler returns a scheduler for a bound session.
func NewScheduler(s *Session, opts ...Option) *Scheduler {
	o := newOptions(opts)
	o.withUDPDefaults()

	return &Scheduler{
		session:   s,
		binder:    o.binder,
		keepalive: o.keepalive,
		clock:     o.clock,
		metrics:   o.metrics,
		log:       o.loggerFactory.NewLogger("scheduler"),
	}
}

// State returns the current state. It must be called from the goroutine
// running Run, or after Run returned.
func (s *Scheduler) State() State {
	return s.state
}

// NextKeepalive returns the next keepalive deadline, zero if keepalives are
// disabled.
func (s *Scheduler) NextKeepalive() time.Time {
	return s.nextKeepalive
}

// Run blocks until ctx is done, waiting fails, or a rebind fails. It never
// returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.session.Params.Keepalive()
	if interval > 0 {
		s.nextKeepalive = s.clock.Now().Add(interval)
	}

	for {
		s.state = StateWaiting
		conn := s.session.Conn()
		if conn == nil {
			return ErrNoConnection
		}

		timeout := time.Duration(-1)
		if interval > 0 {
			if timeout = s.nextKeepalive.Sub(s.clock.Now()); timeout < 0 {
				timeout = 0
			}
		}
		readable, err := conn.Wait(ctx, timeout)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.log.Errorf("Wait failed: %v", err)

			return fmt.Errorf("%w: %w", ErrWaitFailure, err)
		}

		now := s.clock.Now()
		if interval > 0 && !now.Before(s.nextKeepalive) {
			s.fireKeepalive()
			// Anchored at fire time so a late wake never causes a burst.
			s.nextKeepalive = now.Add(interval)
		}

		if readable {
			if err := s.drain(ctx, interval); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) fireKeepalive() {
	s.log.Debugf("[%s] Connection needs keepalive - ping", s.session.Params.Remote())
	s.metrics.keepalive()
	if err := s.keepalive.Ping(s.session, false); err != nil {
		s.log.Warnf("Keepalive failed: %v", err)
	}
	if err := s.keepalive.Ping(s.session, true); err != nil {
		s.log.Warnf("Keepalive failed: %v", err)
	}
}

// drain consumes queued datagrams until the socket would block. A broken
// connection rebinds and ends the drain for this wake.
func (s *Scheduler) drain(ctx context.Context, interval time.Duration) error {
	s.state = StateDraining
	for {
		err := s.session.Receive()
		switch {
		case err == nil:
		case errors.Is(err, ErrWouldBlock):
			return nil
		case IsConnBroken(err):
			return s.rebind(ctx, interval)
		case errors.Is(err, ErrNoConnection):
			return err
		default:
			// Wrong transaction, missing attributes and IPv6 only skip
			// the datagram.
		}
	}
}

func (s *Scheduler) rebind(ctx context.Context, interval time.Duration) error {
	s.state = StateRebinding
	s.log.Debugf("[%s] Connection is broken - rebind", s.session.Params.Remote())
	s.metrics.rebind()
	if err := s.binder.Bind(ctx, s.session); err != nil {
		s.log.Errorf("Rebind failed: %v", err)

		return err
	}
	if interval > 0 {
		s.nextKeepalive = s.clock.Now().Add(interval)
	}

	return nil
}
