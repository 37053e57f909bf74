package fdnotify

// BlockIndefinitely may be passed to Notifier.Pull, to wait until at least
// one descriptor is ready. Any negative timeout has the same effect.
const BlockIndefinitely = -1

// Ready is a descriptor reported by Notifier.Pull, along with the readiness
// kinds observed for it.
type Ready struct {
	Fd     int
	Events Events
}

// Watching returns the events fd was registered with, and whether it is in
// the watch set.
func (x *Notifier) Watching(fd int) (Events, bool) {
	if x == nil {
		return 0, false
	}
	events, ok := x.watches[fd]
	return events, ok
}

// Len returns the number of watched descriptors.
func (x *Notifier) Len() int {
	if x == nil {
		return 0
	}
	return len(x.watches)
}

// MustNew is like New, but panics if the epoll instance can't be created.
func MustNew(opts ...Option) *Notifier {
	n, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return n
}
