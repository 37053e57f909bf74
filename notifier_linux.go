//go:build linux

package fdnotify

import (
	"math"
	"runtime"

	"github.com/joeycumines/logiface"
	"golang.org/x/sys/unix"
)

// Notifier reports readiness of a set of watched file descriptors, using a
// single epoll instance. See the package docs for usage.
//
// The zero value is not usable, use New. A Notifier must not be used
// concurrently, without external synchronization.
type Notifier struct {
	logger  *logiface.Logger[logiface.Event]
	watches map[int]Events
	// reused by Pull, len is never less than len(watches) at call time
	buf     []unix.EpollEvent
	cleanup runtime.Cleanup
	epfd    int
	valid   bool
}

// New creates a Notifier, allocating a new epoll instance. The returned
// error will be a *SysError, if the kernel refused to allocate the instance,
// in which case no Notifier is returned.
func New(opts ...Option) (*Notifier, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, newSysError(`epoll_create1`, -1, err)
	}

	x := &Notifier{
		logger:  cfg.logger,
		watches: make(map[int]Events, cfg.initialCapacity),
		buf:     make([]unix.EpollEvent, max(1, cfg.initialCapacity)),
		epfd:    epfd,
		valid:   true,
	}

	// releases the instance if x is collected without Close being called
	x.cleanup = runtime.AddCleanup(x, closeEpoll, epfd)

	x.logger.Debug().
		Int(`epfd`, epfd).
		Log(`epoll instance created`)

	return x, nil
}

// Add registers fd, to be reported by Pull when any of events are observed.
// An empty events set is valid, though only conditions the kernel always
// reports (e.g. hang up) will be observed, and those aren't decoded.
//
// Re-adding a watched fd is not deduplicated, the kernel will reject it with
// EEXIST (see Modify). The watch set is unchanged on error.
func (x *Notifier) Add(fd int, events Events) error {
	if !x.ok() {
		return ErrClosed
	}

	ev := unix.EpollEvent{
		Events: events.Epoll(),
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(x.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return newSysError(`epoll_ctl(add)`, fd, err)
	}
	x.watches[fd] = events

	x.logger.Debug().
		Int(`epfd`, x.epfd).
		Int(`fd`, fd).
		Stringer(`events`, events).
		Log(`watch added`)

	return nil
}

// Modify replaces the events a watched fd is registered for. It fails
// locally (matching ErrNotWatched) if fd isn't watched, and leaves the watch
// set unchanged on error.
func (x *Notifier) Modify(fd int, events Events) error {
	if !x.ok() {
		return ErrClosed
	}

	if _, ok := x.watches[fd]; !ok {
		return &SysError{Op: `epoll_ctl(mod)`, Fd: fd, Errno: unix.ENOENT, Local: true}
	}

	ev := unix.EpollEvent{
		Events: events.Epoll(),
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(x.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return newSysError(`epoll_ctl(mod)`, fd, err)
	}
	x.watches[fd] = events

	x.logger.Debug().
		Int(`epfd`, x.epfd).
		Int(`fd`, fd).
		Stringer(`events`, events).
		Log(`watch modified`)

	return nil
}

// Remove deregisters fd. It fails locally (matching ErrNotWatched, and
// unix.ENOENT) without a kernel call, if fd isn't watched.
//
// If the kernel rejects the removal, fd remains in the watch set, as it is
// still registered as far as the kernel is concerned.
func (x *Notifier) Remove(fd int) error {
	if !x.ok() {
		return ErrClosed
	}

	if _, ok := x.watches[fd]; !ok {
		return &SysError{Op: `epoll_ctl(del)`, Fd: fd, Errno: unix.ENOENT, Local: true}
	}

	if err := unix.EpollCtl(x.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return newSysError(`epoll_ctl(del)`, fd, err)
	}
	delete(x.watches, fd)

	x.logger.Debug().
		Int(`epfd`, x.epfd).
		Int(`fd`, fd).
		Log(`watch removed`)

	return nil
}

// Pull waits for readiness of any watched descriptor, returning each ready
// descriptor once, in the order the kernel reported them.
//
// A timeoutMs of 0 returns immediately, and a negative value (see
// BlockIndefinitely) waits without a bound. An empty (non-nil) result means
// the timeout elapsed. Errors, including EINTR, are returned as a *SysError,
// and are never retried.
//
// Pull doesn't modify the watch set.
func (x *Notifier) Pull(timeoutMs int) ([]Ready, error) {
	if !x.ok() {
		return nil, ErrClosed
	}

	// must be able to report every watched fd in a single call
	size := max(1, len(x.watches))
	if len(x.buf) < size {
		x.buf = make([]unix.EpollEvent, size)
	}

	if timeoutMs < 0 {
		timeoutMs = -1
	} else if timeoutMs > math.MaxInt32 {
		timeoutMs = math.MaxInt32
	}

	n, err := unix.EpollWait(x.epfd, x.buf[:size], timeoutMs)
	if err != nil {
		return nil, newSysError(`epoll_wait`, -1, err)
	}

	ready := make([]Ready, n)
	for i := range ready {
		ready[i] = Ready{
			Fd:     int(x.buf[i].Fd),
			Events: EventsFromEpoll(x.buf[i].Events),
		}
	}

	return ready, nil
}

// Close releases the epoll instance, which implicitly deregisters every
// watched descriptor (the descriptors themselves are not closed). It is safe
// to call more than once, and on a nil Notifier, subsequent calls are no-ops.
func (x *Notifier) Close() error {
	if !x.ok() {
		return nil
	}
	x.valid = false
	x.cleanup.Stop()
	x.watches = nil
	x.buf = nil

	err := unix.Close(x.epfd)

	x.logger.Debug().
		Int(`epfd`, x.epfd).
		Log(`epoll instance closed`)

	x.epfd = -1

	return newSysError(`close`, -1, err)
}

func (x *Notifier) ok() bool {
	return x != nil && x.valid
}

func closeEpoll(epfd int) {
	_ = unix.Close(epfd)
}
