// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/pion/logging"
	"go.uber.org/multierr"
)

// Runner restarts the whole session after any bind or loop failure.
type Runner struct {
	params Params
	opts   []Option
	binder Binder
	clock  clock.Clock
	log    logging.LeveledLogger

	attempts int
}

// NewRunner returns a runner for params. opts are passed on to every
// Session and Scheduler it creates.
func NewRunner(params Params, opts ...Option) *Runner {
	o := newOptions(opts)
	o.withUDPDefaults()
	// Every attempt shares the resolved defaults.
	opts = append(append([]Option(nil), opts...),
		WithLoggerFactory(o.loggerFactory),
		WithClock(o.clock),
		WithBinder(o.binder),
		WithKeepaliveSender(o.keepalive),
	)

	return &Runner{
		params: params,
		opts:   opts,
		binder: o.binder,
		clock:  o.clock,
		log:    o.loggerFactory.NewLogger("natpunch"),
	}
}

// Attempts returns how many sessions were started.
func (r *Runner) Attempts() int {
	return r.attempts
}

// Run binds and schedules sessions until ctx is done. If RestartInterval
// is zero the first failure is returned; otherwise the runner sleeps
// RestartInterval and starts over.
func (r *Runner) Run(ctx context.Context) error {
	for {
		err := r.runSession(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.log.Errorf("Session failed: %v", err)

		if r.params.RestartInterval == 0 {
			r.log.Error("Exiting due to connection error")

			return err
		}
		r.log.Infof("Restarting in %d seconds", r.params.RestartInterval)

		timer := r.clock.Timer(r.params.Restart())
		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Runner) runSession(ctx context.Context) (err error) {
	r.attempts++
	s := NewSession(r.params, r.opts...)
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	if err := r.binder.Bind(ctx, s); err != nil {
		r.log.Error("Failed to bind")

		return err
	}

	return NewScheduler(s, r.opts...).Run(ctx)
}
