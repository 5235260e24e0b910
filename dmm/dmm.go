// Package dmm provides the generic SCPI multimeter driver.
//
// Instrument-specific command dialects belong to external driver packages;
// this driver speaks only the common SCPI measurement commands (INITiate,
// FETCh?, FUNCtion) and exists so that the multimeter capability family has
// a generic member. It registers itself under the "multimeter" namespace at
// init time.
package dmm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-bench/bench"
	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

// Registration coordinates of the generic multimeter driver.
const (
	Namespace = "multimeter"
	Object    = "SCPIMultimeter"
)

// SCPIMultimeter is a generic SCPI digital multimeter session.
type SCPIMultimeter struct {
	*scpi.Instrument
}

var (
	_ scpi.Device             = (*SCPIMultimeter)(nil)
	_ scpi.MeasurementFetcher = (*SCPIMultimeter)(nil)
	_ scpi.TriggerArmer       = (*SCPIMultimeter)(nil)
	_ scpi.OperationProvider  = (*SCPIMultimeter)(nil)
)

func init() {
	bench.Register(Namespace, Object, bench.FamilyMultimeter,
		func(reg *transport.Registry, address string, kwargs map[string]any) (scpi.Device, error) {
			return New(reg, address, kwargs)
		})
}

// New opens a multimeter session at the given locator.
func New(reg *transport.Registry, address string, kwargs map[string]any) (*SCPIMultimeter, error) {
	inst, err := scpi.Open(reg, address,
		scpi.WithKwargs(kwargs),
		scpi.WithDeviceType(Object),
	)
	if err != nil {
		return nil, err
	}

	return &SCPIMultimeter{Instrument: inst}, nil
}

// FetchMeasurement returns the reading of the last triggered measurement
// (FETCh?).
func (m *SCPIMultimeter) FetchMeasurement() (float64, error) {
	resp, err := m.Query("FETC?")
	if err != nil {
		return 0, err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0, fmt.Errorf("dmm: unexpected fetch response %q: %v", resp, err)
	}

	return value, nil
}

// ArmTrigger initiates the trigger system (INITiate), arming the meter for
// the next trigger event.
func (m *SCPIMultimeter) ArmTrigger() error {
	return m.Write("INIT")
}

// Operations extends the standard init-sequence operations with
// meter-specific ones.
func (m *SCPIMultimeter) Operations() map[string]scpi.Operation {
	return map[string]scpi.Operation{
		"arm": func(map[string]any) error { return m.ArmTrigger() },
		"set_function": func(args map[string]any) error {
			fn, ok := args["function"].(string)
			if !ok {
				return fmt.Errorf("dmm: set_function requires a string \"function\" argument")
			}
			return m.Write(`FUNC "` + fn + `"`)
		},
	}
}
