// Package fdnotify implements a minimal I/O readiness notifier, on top of
// Linux epoll.
//
// A [Notifier] owns a single epoll instance, and a mirror of its watch set.
// Callers register file descriptors with the [Events] they are interested in,
// then repeatedly call [Notifier.Pull], which blocks until at least one
// descriptor is ready (or the timeout elapses), and reports exactly which
// descriptors fired, and with which readiness kinds.
//
// # Usage
//
//	n, err := fdnotify.New()
//	if err != nil {
//	    return err
//	}
//	defer n.Close()
//
//	if err := n.Add(fd, fdnotify.NoEvents().WithRead()); err != nil {
//	    return err
//	}
//
//	ready, err := n.Pull(1000)
//	if err != nil {
//	    return err
//	}
//	for _, r := range ready {
//	    fmt.Printf("fd=%d events=%s\n", r.Fd, r.Events)
//	}
//
// # Triggering
//
// Descriptors are registered using the kernel's default (level triggered)
// mode. A readiness condition is reported by every Pull, until the caller
// performs the operation that clears it, e.g. reading until EAGAIN.
//
// # Concurrency
//
// A Notifier is not safe for concurrent use. All of Add, Remove, Modify and
// Pull must be called from a single goroutine, or be externally synchronized.
// There is no way to interrupt an in-flight Pull, other than its timeout.
package fdnotify
