package fdnotify

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// notifierOptions holds configuration options for Notifier creation.
type notifierOptions struct {
	logger          *logiface.Logger[logiface.Event]
	initialCapacity int
}

// Option configures a Notifier instance.
type Option interface {
	applyNotifier(*notifierOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyNotifierFunc func(*notifierOptions) error
}

func (o *optionImpl) applyNotifier(opts *notifierOptions) error {
	return o.applyNotifierFunc(opts)
}

// WithLogger attaches a logger, which receives debug events for changes to
// the watch set, and the lifecycle of the epoll instance. Errors are never
// logged, only returned.
//
// Use [logiface.Logger.Logger] to convert a logger with a concrete event type.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *notifierOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithInitialCapacity pre-sizes the watch set and the event buffer used by
// Pull, for the expected number of watched descriptors.
func WithInitialCapacity(n int) Option {
	return &optionImpl{func(opts *notifierOptions) error {
		if n < 0 {
			return errors.New("fdnotify: initial capacity must not be negative")
		}
		opts.initialCapacity = n
		return nil
	}}
}

// resolveOptions applies Option instances to notifierOptions.
func resolveOptions(opts []Option) (*notifierOptions, error) {
	cfg := &notifierOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyNotifier(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
