//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-fdnotify"
	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

type (
	// target is a single watched descriptor.
	target struct {
		path string
		fd   int
	}

	// watcher drives a Notifier, logging each readiness report.
	watcher struct {
		notifier *fdnotify.Notifier
		logger   *logiface.Logger[logiface.Event]
		// optional, limits readiness logs per fd
		limiter *catrate.Limiter
		targets map[int]target
		events  fdnotify.Events
		timeout time.Duration
		// max number of pulls, 0 for unlimited
		count int
		drain bool
	}
)

// pullTimeout converts the configured timeout to the millisecond form
// accepted by Pull.
func (x *watcher) pullTimeout() int {
	if x.timeout < 0 {
		return fdnotify.BlockIndefinitely
	}
	return int(x.timeout / time.Millisecond)
}

// watch registers every target, removing any that were already registered
// if one fails.
func (x *watcher) watch(targets []target) error {
	for i, t := range targets {
		if err := x.notifier.Add(t.fd, x.events); err != nil {
			for _, t := range targets[:i] {
				_ = x.notifier.Remove(t.fd)
				delete(x.targets, t.fd)
			}
			return fmt.Errorf("watch %s: %w", t.path, err)
		}
		x.targets[t.fd] = t
		x.logger.Debug().
			Int(`fd`, t.fd).
			Str(`path`, t.path).
			Stringer(`events`, x.events).
			Log(`watching`)
	}
	return nil
}

// unwatch removes every target from the notifier.
func (x *watcher) unwatch() error {
	var errs []error
	for fd, t := range x.targets {
		if err := x.notifier.Remove(fd); err != nil {
			errs = append(errs, fmt.Errorf("unwatch %s: %w", t.path, err))
			continue
		}
		delete(x.targets, fd)
	}
	return errors.Join(errs...)
}

// run pulls until count is reached, ctx is canceled, or Pull fails.
// Cancellation is only observed between pulls.
func (x *watcher) run(ctx context.Context) error {
	timeout := x.pullTimeout()
	for i := 0; x.count == 0 || i < x.count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ready, err := x.notifier.Pull(timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				// e.g. SIGINT, re-check ctx
				continue
			}
			return fmt.Errorf("pull: %w", err)
		}

		if len(ready) == 0 {
			x.logger.Trace().
				Int(`timeout_ms`, timeout).
				Log(`no descriptors ready`)
			continue
		}

		for _, r := range ready {
			x.handle(r)
		}
	}
	return nil
}

func (x *watcher) handle(r fdnotify.Ready) {
	t := x.targets[r.Fd]

	var n int
	if x.drain && r.Events.HasRead() {
		n = drainFD(r.Fd)
	}

	if x.limiter != nil {
		if _, ok := x.limiter.Allow(r.Fd); !ok {
			return
		}
	}

	x.logger.Info().
		Int(`fd`, r.Fd).
		Str(`path`, t.path).
		Stringer(`events`, r.Events).
		Call(func(b *logiface.Builder[logiface.Event]) {
			if x.drain {
				b.Int(`drained`, n)
			}
		}).
		Log(`ready`)
}

// drainFD reads (and discards) until the descriptor would block or reaches
// EOF, returning the number of bytes read. The number of reads is bounded.
func drainFD(fd int) (total int) {
	var buf [4096]byte
	for range 64 {
		n, err := unix.Read(fd, buf[:])
		if n > 0 {
			total += n
		}
		if err != nil || n <= 0 {
			break
		}
	}
	return total
}
