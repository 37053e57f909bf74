package fdnotify

import (
	"errors"
	"strconv"
	"syscall"
)

// Standard errors.
var (
	// ErrNotWatched is matched (via errors.Is) by the error returned when
	// removing or modifying a descriptor that isn't in the watch set.
	ErrNotWatched = errors.New("fdnotify: fd not watched")
	ErrClosed     = errors.New("fdnotify: notifier closed")
	// ErrNotSupported is returned by New on platforms without epoll.
	ErrNotSupported = errors.New("fdnotify: platform not supported")
)

// SysError reports a failed kernel call, or a local precondition failure
// that is reported in the same shape (see Local).
//
// The Errno is the underlying cause, i.e. errors.Is(err, unix.EEXIST) works
// as expected.
type SysError struct {
	// Op is the name of the failed operation, e.g. "epoll_ctl(add)".
	Op string
	// Fd is the watched descriptor the operation targeted, or -1.
	Fd int
	// Errno is the numeric error code.
	Errno syscall.Errno
	// Local is true if the error was raised without a kernel call.
	Local bool
}

// Error implements the error interface.
func (e *SysError) Error() string {
	b := make([]byte, 0, 64)
	b = append(b, "fdnotify: "...)
	b = append(b, e.Op...)
	if e.Fd >= 0 {
		b = append(b, " fd "...)
		b = strconv.AppendInt(b, int64(e.Fd), 10)
	}
	b = append(b, ": "...)
	b = append(b, e.Errno.Error()...)
	return string(b)
}

// Unwrap returns the Errno, for use with [errors.Is] and [errors.As].
func (e *SysError) Unwrap() error {
	return e.Errno
}

// Is matches ErrNotWatched, for local "not found" errors.
func (e *SysError) Is(target error) bool {
	return target == ErrNotWatched && e.Local
}

// Timeout reports whether the Errno is considered a timeout.
func (e *SysError) Timeout() bool { return e.Errno.Timeout() }

// Temporary reports whether the Errno is considered temporary, e.g. EINTR.
// This package never retries, it is up to the caller.
func (e *SysError) Temporary() bool { return e.Errno.Temporary() }

func newSysError(op string, fd int, err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	return &SysError{Op: op, Fd: fd, Errno: errno}
}
