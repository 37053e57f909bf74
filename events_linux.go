//go:build linux

package fdnotify

import (
	"golang.org/x/sys/unix"
)

// EventsFromEpoll decodes an epoll event mask. Only EPOLLIN, EPOLLOUT and
// EPOLLERR are recognised, any other bits (e.g. EPOLLHUP) are dropped.
func EventsFromEpoll(mask uint32) Events {
	var events Events
	if mask&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if mask&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if mask&unix.EPOLLERR != 0 {
		events |= EventError
	}
	return events
}

// Epoll encodes the set as an epoll event mask, containing only EPOLLIN,
// EPOLLOUT and EPOLLERR.
func (x Events) Epoll() uint32 {
	var mask uint32
	if x.HasRead() {
		mask |= unix.EPOLLIN
	}
	if x.HasWrite() {
		mask |= unix.EPOLLOUT
	}
	if x.HasError() {
		mask |= unix.EPOLLERR
	}
	return mask
}
