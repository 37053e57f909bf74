//go:build !linux

package fdnotify

// Notifier is only implemented on Linux, on other platforms New always fails
// with ErrNotSupported.
type Notifier struct {
	watches map[int]Events
}

// New returns ErrNotSupported.
func New(opts ...Option) (*Notifier, error) {
	if _, err := resolveOptions(opts); err != nil {
		return nil, err
	}
	return nil, ErrNotSupported
}

func (x *Notifier) Add(fd int, events Events) error { return ErrNotSupported }

func (x *Notifier) Modify(fd int, events Events) error { return ErrNotSupported }

func (x *Notifier) Remove(fd int) error { return ErrNotSupported }

func (x *Notifier) Pull(timeoutMs int) ([]Ready, error) { return nil, ErrNotSupported }

func (x *Notifier) Close() error { return nil }
