package bench

import "errors"

var (
	// ErrMissingEquipment indicates that the required-device mask names
	// devices absent from the configuration. Reported before any connection
	// is attempted.
	ErrMissingEquipment = errors.New("bench: required equipment missing from configuration")

	// ErrUnsupportedDevice indicates that a descriptor's (definition, object)
	// pair resolves to no registered driver.
	ErrUnsupportedDevice = errors.New("bench: unsupported device")

	// ErrConnectionAborted indicates that a device named in the
	// required-device mask failed to resolve, invalidating the whole
	// environment.
	ErrConnectionAborted = errors.New("bench: required device failed, resolution aborted")
)
