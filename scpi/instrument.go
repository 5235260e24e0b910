package scpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/transport"
)

// Instrument is the base instrument session: one logical connection to a
// SCPI-capable device over a transport handle acquired from a Registry.
//
// All operations are synchronous pass-throughs to the transport and fail
// with errors wrapping transport.ErrTimeout or transport.ErrIO; neither is
// retried here, retry policy belongs to the caller.
type Instrument struct {
	loc        transport.Locator
	handle     transport.Handle
	deviceType string
	identity   string
	logger     logger.Logger
}

var _ Device = (*Instrument)(nil)

// Open constructs an instrument session for the locator, acquiring the
// transport handle through reg. Serial endpoints already open in reg are
// shared rather than re-opened.
func Open(reg *transport.Registry, locator string, opts ...Option) (*Instrument, error) {
	cfg := &openConfig{
		deviceType: "Instrument",
		logger:     logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	loc, err := transport.ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	handle, err := reg.Acquire(loc, cfg.kwargs)
	if err != nil {
		return nil, err
	}

	// The opener applies a "timeout" kwarg for fresh handles only; apply it
	// here as well so sessions joining a shared handle get it too.
	if d := cfg.kwargs.Duration("timeout", 0); d > 0 {
		handle.SetTimeout(d)
	}
	if cfg.timeout > 0 {
		handle.SetTimeout(cfg.timeout)
	}

	inst := &Instrument{
		loc:        loc,
		handle:     handle,
		deviceType: cfg.deviceType,
		logger:     cfg.logger.With("device_type", cfg.deviceType, "locator", loc.Raw()),
	}
	inst.logger.Debug("session opened", "handle_id", transport.HandleID(handle))

	return inst, nil
}

func (i *Instrument) Locator() string { return i.loc.Raw() }

func (i *Instrument) DeviceType() string { return i.deviceType }

// Handle returns the underlying transport handle. It is exclusively owned by
// this session unless the registry shares it across sessions on the same
// serial endpoint.
func (i *Instrument) Handle() transport.Handle { return i.handle }

// Write passes the command through to the device without processing.
func (i *Instrument) Write(cmd string) error {
	return i.handle.Write(cmd)
}

// Read returns the device's response without processing.
func (i *Instrument) Read() (string, error) {
	return i.handle.Read()
}

// Query passes the command through and returns the response, atomically with
// respect to other traffic on the handle.
func (i *Instrument) Query(cmd string) (string, error) {
	return i.handle.Query(cmd)
}

// Identity returns the instrument's identification string. The *IDN? query
// is one of the IEEE 488.2 common commands and should be supported by all
// SCPI compatible instruments. The response is cached after the first call.
func (i *Instrument) Identity() (string, error) {
	if i.identity != "" {
		return i.identity, nil
	}

	idn, err := i.handle.Query("*IDN?")
	if err != nil {
		return "", err
	}
	i.identity = strings.TrimSpace(idn)

	return i.identity, nil
}

// Clear sends the clear status command (*CLS), emptying the error queue and
// clearing all event registers.
func (i *Instrument) Clear() error {
	return i.handle.Write("*CLS")
}

// Reset executes a device reset (*RST).
func (i *Instrument) Reset() error {
	return i.handle.Write("*RST")
}

// SetLocal attempts to return the instrument to local front-panel control.
// Transports without that capability make this a silent no-op.
func (i *Instrument) SetLocal() error {
	if lc, ok := i.handle.(transport.LocalController); ok {
		return lc.SetLocal()
	}
	return nil
}

// SetTimeout sets the response timeout, forwarded to the transport handle.
// Sessions sharing the handle share the timeout.
func (i *Instrument) SetTimeout(d time.Duration) {
	i.handle.SetTimeout(d)
}

func (i *Instrument) Timeout() time.Duration {
	return i.handle.Timeout()
}

func (i *Instrument) String() string {
	return fmt.Sprintf("%s(%s, timeout=%s)", i.deviceType, i.loc.Raw(), i.Timeout())
}
