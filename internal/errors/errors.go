// Package errors holds small wrapping helpers shared across packages.
package errors

import (
	"github.com/cockroachdb/errors"
)

// Wrap annotates err with msg. It returns nil when err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf is like Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
