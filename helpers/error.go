package helpers

import (
	"strings"

	"github.com/juju/errors"
)

// FoldErrors joins non-nil errors into one, nil if none.
func FoldErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	ss := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			ss = append(ss, e.Error())
		}
	}
	switch len(ss) {
	case 0:
		return nil
	case 1:
		for _, e := range errs {
			if e != nil {
				return e
			}
		}
	}
	return errors.New(strings.Join(ss, "\n"))
}

// CloseAll closes all non-nil items, returns folded errors.
func CloseAll(cs ...interface{ Close() error }) error {
	errs := make([]error, len(cs))
	for i, c := range cs {
		if c != nil {
			errs[i] = c.Close()
		}
	}
	return FoldErrors(errs)
}
