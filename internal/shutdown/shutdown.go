// Package shutdown turns an interrupt signal into cooperative cancellation
// of a running scan, with a bounded wait for the scan to wrap up.
package shutdown

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// DefaultGrace is how long a trip waits for the scan to finish.
const DefaultGrace = 15 * time.Second

// ExitInterrupted is the exit code used when the grace period runs out.
const ExitInterrupted = 130

// Controller owns the scan's cancellation token. The zero value is not
// usable; call New.
type Controller struct {
	out   io.Writer
	grace time.Duration
	exit  func(int)

	cancel   context.CancelFunc
	sigCh    chan os.Signal
	stopCh   chan struct{}
	finished chan struct{}

	tripOnce   sync.Once
	finishOnce sync.Once
	disarmOnce sync.Once
	tripped    atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithGrace sets the wait for the scan to finish after a trip.
func WithGrace(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithExit replaces os.Exit, which runs when the grace period expires.
func WithExit(fn func(int)) Option {
	return func(c *Controller) { c.exit = fn }
}

// New returns a controller that prints its notices to out.
func New(out io.Writer, opts ...Option) *Controller {
	c := &Controller{
		out:      out,
		grace:    DefaultGrace,
		exit:     os.Exit,
		sigCh:    make(chan os.Signal, 1),
		stopCh:   make(chan struct{}),
		finished: make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Arm installs SIGINT/SIGTERM handling and returns the cancellation token
// for the scan.
func (c *Controller) Arm(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	signal.Notify(c.sigCh, os.Interrupt, syscall.SIGTERM)
	go c.watch()
	return ctx
}

// Track registers the scan's completion signal. A trip waits on it.
func (c *Controller) Track(done <-chan struct{}) {
	go func() {
		select {
		case <-done:
			c.finishOnce.Do(func() { close(c.finished) })
		case <-c.stopCh:
		}
	}()
}

// Trip cancels the token, prints the interrupt notice and waits for the
// tracked scan. If the grace period runs out the exit function is called
// with ExitInterrupted. Only the first call does anything.
func (c *Controller) Trip() {
	c.tripOnce.Do(func() {
		c.tripped.Store(true)
		if c.cancel != nil {
			c.cancel()
		}
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "=== INTERRUPTED BY USER (Ctrl-C) ===")
		fmt.Fprintln(c.out, "Stopping filesystem scan gracefully...")
		fmt.Fprintln(c.out, "Please wait for current operations to complete and results to be displayed.")
		fmt.Fprintln(c.out)

		timer := time.NewTimer(c.grace)
		defer timer.Stop()
		select {
		case <-c.finished:
			slog.Debug("scan finished after interrupt")
		case <-timer.C:
			fmt.Fprintln(c.out, "Timeout waiting for graceful shutdown, partial results may be incomplete.")
			c.exit(ExitInterrupted)
		}
	})
}

// Tripped reports whether cancellation was user initiated.
func (c *Controller) Tripped() bool { return c.tripped.Load() }

// Disarm stops signal delivery and releases the token. The scan is over
// by then, so a trip still waiting is released too.
func (c *Controller) Disarm() {
	c.disarmOnce.Do(func() {
		signal.Stop(c.sigCh)
		close(c.stopCh)
		c.finishOnce.Do(func() { close(c.finished) })
		if c.cancel != nil {
			c.cancel()
		}
	})
}

func (c *Controller) watch() {
	select {
	case sig := <-c.sigCh:
		slog.Debug("signal received", "signal", sig)
		c.Trip()
	case <-c.stopCh:
	}
}
