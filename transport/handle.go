package transport

import "time"

// Default values applied by the built-in openers when the corresponding
// constructor option is absent.
const (
	// DefaultTimeout is the default per-operation response timeout.
	DefaultTimeout = 1 * time.Second

	// DefaultConnectTimeout is the default timeout for establishing a
	// TCP connection.
	DefaultConnectTimeout = 3 * time.Second

	// DefaultBaudRate is the default serial baud rate.
	DefaultBaudRate = 9600
)

// Handle is one open transport session to a physical endpoint.
//
// All operations are synchronous and blocking; a call returns once the
// transport responds, fails, or the configured timeout elapses. Operations
// fail with an error wrapping ErrTimeout (no response in time) or ErrIO
// (transport failure). Neither is retried at this layer.
//
// A Handle may be shared by several instrument sessions (serial endpoints are
// deduplicated by the Registry), so Query is atomic with respect to other
// traffic on the same handle.
type Handle interface {
	// Locator returns the locator this handle was opened with.
	Locator() Locator

	// Write sends one command string to the endpoint. The handle appends
	// its configured write termination.
	Write(cmd string) error

	// Read reads one response from the endpoint, with the configured read
	// termination stripped.
	Read() (string, error)

	// Query performs a write followed by a read as one atomic operation;
	// no other traffic is interleaved on the handle in between.
	Query(cmd string) (string, error)

	// SetTimeout sets the per-operation response timeout.
	SetTimeout(d time.Duration)

	// Timeout returns the per-operation response timeout.
	Timeout() time.Duration

	// Close releases the underlying endpoint. Handles owned by a Registry
	// (shared serial ports, GPIB controllers) live for the process lifetime
	// and are not closed by this layer.
	Close() error
}

// LocalController is implemented by handles whose transport can return the
// instrument front panel to local control.
type LocalController interface {
	SetLocal() error
}

// GroupTriggerer is implemented by controller handles that can trigger
// several bus addresses in one coordinated operation.
type GroupTriggerer interface {
	GroupTrigger(addrs ...int) error
}

// identified is implemented by handles carrying a unique ID for log correlation.
type identified interface {
	ID() string
}

// HandleID returns the handle's unique ID for log correlation, or an empty
// string if the handle does not carry one.
func HandleID(h Handle) string {
	if i, ok := h.(identified); ok {
		return i.ID()
	}
	return ""
}
