package scpi

import (
	"fmt"
	"time"

	"github.com/arloliu/go-bench/transport"
)

// Device is the uniform capability set exposed by every instrument session,
// whatever the physical transport or driver behind it.
type Device interface {
	// Locator returns the resource string the device was opened with.
	Locator() string

	// DeviceType returns the concrete device type name, e.g. "Instrument"
	// or "SCPIMultimeter". It takes part in session equality, see Equal.
	DeviceType() string

	// Write passes one command through to the device.
	Write(cmd string) error

	// Read returns one response from the device without processing.
	Read() (string, error)

	// Query performs an atomic write-then-read.
	Query(cmd string) (string, error)

	// Identity returns the device's identification string (*IDN?).
	// The response is queried lazily and cached on the session.
	Identity() (string, error)

	// Clear sends the IEEE 488.2 clear status command (*CLS).
	Clear() error

	// Reset sends the IEEE 488.2 reset command (*RST).
	Reset() error

	// SetLocal attempts to return the instrument to local front-panel
	// control. Transports without that capability make this a silent no-op,
	// not a failure.
	SetLocal() error

	// SetTimeout sets the response timeout, forwarded to the transport.
	SetTimeout(d time.Duration)

	// Timeout returns the response timeout.
	Timeout() time.Duration
}

// MeasurementFetcher is the optional capability of devices that can report a
// triggered measurement, e.g. multimeters.
type MeasurementFetcher interface {
	FetchMeasurement() (float64, error)
}

// TriggerArmer is the optional capability of devices whose trigger can be
// armed (initiated) ahead of a fetch.
type TriggerArmer interface {
	ArmTrigger() error
}

// Operation is one named device operation invocable from a declarative
// initialization sequence.
type Operation func(args map[string]any) error

// OperationProvider is the optional capability of devices that extend the
// standard operation set with driver-specific named operations. The bench
// resolver merges these over StandardOperations when running init sequences.
type OperationProvider interface {
	Operations() map[string]Operation
}

// Equal reports whether two sessions address the same logical device: same
// concrete device type and same locator string.
//
// Handle identity is deliberately not part of the comparison. Two equal
// sessions may or may not share the underlying transport handle depending on
// the transport kind (serial sessions do, TCP sessions do not), so equality
// must not be read as resource identity.
func Equal(a, b Device) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.DeviceType() == b.DeviceType() && a.Locator() == b.Locator()
}

// StandardOperations returns the named operations every device supports,
// keyed by the vocabulary used in configuration init sequences.
func StandardOperations(d Device) map[string]Operation {
	return map[string]Operation{
		"reset": func(map[string]any) error { return d.Reset() },
		"clear": func(map[string]any) error { return d.Clear() },
		"set_local": func(map[string]any) error {
			return d.SetLocal()
		},
		"write": func(args map[string]any) error {
			cmd, ok := args["command"].(string)
			if !ok {
				return fmt.Errorf("write operation requires a string \"command\" argument")
			}
			return d.Write(cmd)
		},
		"timeout": func(args map[string]any) error {
			t := transport.Options(args).Duration("timeout", 0)
			if t <= 0 {
				return fmt.Errorf("timeout operation requires a positive \"timeout\" argument in milliseconds")
			}
			d.SetTimeout(t)
			return nil
		},
	}
}
