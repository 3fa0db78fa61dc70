// internal/slave/errors.go
package slave

import "errors"

var (
	// ErrAlreadyRunning reports start() against a Starting or Running slave.
	ErrAlreadyRunning = errors.New("slave: already running")

	// ErrInvalidState reports an operation the current lifecycle state forbids,
	// e.g. loading points while running or starting a Failed slave without reset.
	ErrInvalidState = errors.New("slave: invalid state for operation")

	// ErrEndpointInUse reports a start() whose transport endpoint is claimed by
	// another slave.
	ErrEndpointInUse = errors.New("slave: endpoint in use")

	// ErrBindFailed reports a transport bind failure; the slave is Failed until
	// reset.
	ErrBindFailed = errors.New("slave: bind failed")
)
