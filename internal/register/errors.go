// internal/register/errors.go
package register

import "errors"

var (
	// ErrAddressNotFound reports a read or write against an address with no
	// backing point.
	ErrAddressNotFound = errors.New("register: address not found")

	// ErrReadOnly reports a write against a read-only point.
	ErrReadOnly = errors.New("register: point is read-only")

	// ErrOutOfRange reports a write whose value falls outside the point's
	// inclusive min/max bounds.
	ErrOutOfRange = errors.New("register: value out of range")

	// ErrDuplicateAddress reports a point table carrying the same address twice
	// for one register kind.
	ErrDuplicateAddress = errors.New("register: duplicate address")

	// ErrNotBoolean reports a non 0/1 value written to a discrete kind.
	ErrNotBoolean = errors.New("register: discrete value must be 0 or 1")
)
