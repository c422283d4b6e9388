package bookingerr

import "errors"

// List aggregates multiple errors produced while validating a batch of
// candidates (e.g. a bulk status transition). Grounded on the
// weberrors.List pattern: append non-nil errors, let AddOnce skip
// duplicates (by exact message), and let the zero value be immediately
// usable.
type List []error

// Add appends e if it is non-nil and returns e unchanged.
func (l *List) Add(e error) error {
	if e != nil {
		*l = append(*l, e)
	}
	return e
}

// AddOnce appends e unless some error already in the list has the same
// message. Dedupe is by message rather than Kind (errors.Is on *Error
// matches same-Kind errors regardless of content) so that, e.g., a bulk
// transition rejecting three different contracts in the same Kind still
// reports all three instead of collapsing to the first.
func (l *List) AddOnce(e error) error {
	if e == nil {
		return nil
	}
	msg := e.Error()
	for _, existing := range *l {
		if existing.Error() == msg {
			return e
		}
	}
	return l.Add(e)
}

// Err returns nil if the list is empty, the sole error if there is exactly
// one, or errors.Join of every error otherwise. KindOf and errors.As on the
// joined error report the first *Error in the list.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return errors.Join([]error(l)...)
	}
}

func (l List) Empty() bool { return len(l) == 0 }
