//go:build linux

// Command fdwatch reports readiness of files, using fdnotify.
//
// Each path is opened read-only (non-blocking), and registered with a single
// notifier. Every ready descriptor is logged to stderr, as JSON.
//
//	mkfifo /tmp/f && fdwatch --timeout=1s /tmp/f
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-fdnotify"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"golang.org/x/sys/unix"
)

var logLevels = map[string]logiface.Level{
	`err`:     logiface.LevelError,
	`warning`: logiface.LevelWarning,
	`info`:    logiface.LevelInformational,
	`debug`:   logiface.LevelDebug,
	`trace`:   logiface.LevelTrace,
}

type config struct {
	paths     []string
	logLevel  string
	timeout   time.Duration
	count     int
	logRate   int
	read      bool
	write     bool
	errorCond bool
	drain     bool
}

func (c *config) events() fdnotify.Events {
	events := fdnotify.NoEvents()
	if c.read {
		events = events.WithRead()
	}
	if c.write {
		events = events.WithWrite()
	}
	if c.errorCond {
		events = events.WithError()
	}
	return events
}

func newApp(cfg *config) *kingpin.Application {
	app := kingpin.New(`fdwatch`, `Report readiness of files using epoll.`)
	app.Flag(`timeout`, `Timeout for each pull, 0 returns immediately, negative blocks indefinitely.`).
		Default(`1s`).DurationVar(&cfg.timeout)
	app.Flag(`count`, `Number of pulls, 0 for unlimited.`).
		Default(`0`).IntVar(&cfg.count)
	app.Flag(`read`, `Watch for read readiness.`).
		Default(`true`).BoolVar(&cfg.read)
	app.Flag(`write`, `Watch for write readiness.`).
		BoolVar(&cfg.write)
	app.Flag(`error`, `Watch for error conditions.`).
		BoolVar(&cfg.errorCond)
	app.Flag(`drain`, `Read and discard available data from readable files.`).
		BoolVar(&cfg.drain)
	app.Flag(`log-rate`, `Max readiness logs per file per second, 0 for unlimited.`).
		Default(`10`).IntVar(&cfg.logRate)
	app.Flag(`log-level`, `Log level.`).
		Default(`info`).EnumVar(&cfg.logLevel, `err`, `warning`, `info`, `debug`, `trace`)
	app.Arg(`path`, `Files to watch.`).
		Required().StringsVar(&cfg.paths)
	return app
}

func main() {
	var cfg config
	kingpin.MustParse(newApp(&cfg).Parse(os.Args[1:]))

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(os.Stderr),
			stumpy.WithTimeField(`time`),
		),
		stumpy.L.WithLevel(logLevels[cfg.logLevel]),
	).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Err().Err(err).Log(`fdwatch failed`)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, logger *logiface.Logger[logiface.Event]) (err error) {
	targets, err := openTargets(cfg.paths)
	if err != nil {
		return err
	}
	defer func() {
		for _, t := range targets {
			_ = unix.Close(t.fd)
		}
	}()

	notifier, err := fdnotify.New(
		fdnotify.WithLogger(logger),
		fdnotify.WithInitialCapacity(len(targets)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if e := notifier.Close(); err == nil {
			err = e
		}
	}()

	w := &watcher{
		notifier: notifier,
		logger:   logger,
		targets:  make(map[int]target, len(targets)),
		events:   cfg.events(),
		timeout:  cfg.timeout,
		count:    cfg.count,
		drain:    cfg.drain,
	}
	if cfg.logRate > 0 {
		w.limiter = catrate.NewLimiter(map[time.Duration]int{time.Second: cfg.logRate})
	}

	if err := w.watch(targets); err != nil {
		return err
	}
	defer func() {
		if e := w.unwatch(); err == nil {
			err = e
		}
	}()

	return w.run(ctx)
}

func openTargets(paths []string) ([]target, error) {
	targets := make([]target, 0, len(paths))
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			for _, t := range targets {
				_ = unix.Close(t.fd)
			}
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		targets = append(targets, target{path: path, fd: fd})
	}
	return targets, nil
}
