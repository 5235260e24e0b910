package transport

import "errors"

var (
	// ErrInvalidLocator indicates that a resource locator string could not be parsed.
	ErrInvalidLocator = errors.New("transport: invalid resource locator")

	// ErrConnectionFailure indicates that a transport endpoint could not be opened.
	ErrConnectionFailure = errors.New("transport: connection failure")

	// ErrTimeout indicates that no response arrived within the configured timeout window.
	ErrTimeout = errors.New("transport: operation timed out")

	// ErrIO indicates a post-connect I/O failure on an open handle.
	ErrIO = errors.New("transport: i/o failure")

	// ErrClosed indicates an operation on a closed handle.
	ErrClosed = errors.New("transport: handle closed")

	// ErrNoOpener indicates that no opener is registered for the locator's
	// transport kind. USB endpoints require an integrator-supplied opener.
	ErrNoOpener = errors.New("transport: no opener registered for transport kind")

	// ErrNoController indicates that a GPIB locator references a board with no
	// configured controller. See WithGPIBController.
	ErrNoController = errors.New("transport: no controller configured for GPIB board")
)
