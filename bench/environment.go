package bench

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arloliu/go-bench/config"
	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

// DeviceState tracks the per-device resolution state machine:
// Pending -> {Connected, Failed}, and with initialization requested,
// Connected -> {Initialized, InitPartial}. No transition ever leaves the
// connected states once reached; a later init failure does not revert a
// device to Failed.
type DeviceState int

const (
	StatePending DeviceState = iota
	StateConnected
	StateFailed
	StateInitialized
	StateInitPartial
)

func (s DeviceState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	case StateInitialized:
		return "initialized"
	case StateInitPartial:
		return "init-partial"
	default:
		return "unknown"
	}
}

// Connected reports whether the state is one of the connected states.
func (s DeviceState) Connected() bool {
	return s == StateConnected || s == StateInitialized || s == StateInitPartial
}

// ResolveFailure records one optional device that failed to resolve.
type ResolveFailure struct {
	Name string
	Err  error
}

// Environment holds the successfully connected devices of one resolution
// pass, by device name, plus the derived multimeter group. It is built once
// per test run and read-only afterward.
type Environment struct {
	devices  map[string]scpi.Device
	order    []string
	states   map[string]DeviceState
	failures []ResolveFailure
	dmms     *DMMGroup
}

type buildConfig struct {
	mask     map[string]struct{}
	init     bool
	registry *transport.Registry
	drivers  *DriverRegistry
	logger   logger.Logger
}

// BuildOption represents a functional option for Build.
type BuildOption interface {
	apply(*buildConfig) error
}

type buildOptFunc func(*buildConfig) error

func (f buildOptFunc) apply(cfg *buildConfig) error { return f(cfg) }

// WithMask sets the required-device mask. Resolution fails with
// ErrMissingEquipment if any name is absent from the configuration, connects
// only the named devices, and aborts with ErrConnectionAborted if any of
// them fails.
func WithMask(names ...string) BuildOption {
	return buildOptFunc(func(cfg *buildConfig) error {
		if len(names) == 0 {
			return errors.New("bench: mask must name at least one device")
		}
		cfg.mask = make(map[string]struct{}, len(names))
		for _, name := range names {
			cfg.mask[name] = struct{}{}
		}

		return nil
	})
}

// WithInit runs each connected device's declared initialization sequence
// after connecting. Initialization failures are reported, never fatal.
func WithInit() BuildOption {
	return buildOptFunc(func(cfg *buildConfig) error {
		cfg.init = true
		return nil
	})
}

// WithTransportRegistry sets the transport session registry to resolve
// against.
//
// The default is a fresh registry with the built-in openers.
func WithTransportRegistry(reg *transport.Registry) BuildOption {
	return buildOptFunc(func(cfg *buildConfig) error {
		if reg == nil {
			return errors.New("bench: transport registry is nil")
		}
		cfg.registry = reg

		return nil
	})
}

// WithDrivers sets the driver registry to resolve descriptors against.
//
// The default is the process-wide registry, see DefaultDrivers.
func WithDrivers(drivers *DriverRegistry) BuildOption {
	return buildOptFunc(func(cfg *buildConfig) error {
		if drivers == nil {
			return errors.New("bench: driver registry is nil")
		}
		cfg.drivers = drivers

		return nil
	})
}

// WithLogger sets the logger for resolution events.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) BuildOption {
	return buildOptFunc(func(cfg *buildConfig) error {
		if l == nil {
			return errors.New("bench: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// Build resolves an equipment configuration into a live environment.
//
// Devices connect strictly sequentially in configuration encounter order;
// later devices may depend on earlier ones, and ordering stays
// deterministic. When a mask is present, only masked devices are attempted
// and any failure aborts the whole resolution. Without a mask every failure
// is recorded and resolution continues; partial success is the normal
// outcome.
func Build(cfg *config.Configuration, opts ...BuildOption) (*Environment, error) {
	bc := &buildConfig{
		drivers: DefaultDrivers(),
		logger:  logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(bc); err != nil {
			return nil, err
		}
	}
	if bc.registry == nil {
		bc.registry = transport.NewRegistry(transport.WithLogger(bc.logger))
	}

	if bc.mask != nil {
		var missing []string
		for name := range bc.mask {
			if !cfg.Has(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, fmt.Errorf("%w: %s", ErrMissingEquipment, strings.Join(missing, ", "))
		}
	}

	env := &Environment{
		devices: make(map[string]scpi.Device),
		states:  make(map[string]DeviceState),
		dmms:    newDMMGroup(bc.logger),
	}

	for _, name := range cfg.Names() {
		// devices outside the mask are never touched
		if bc.mask != nil {
			if _, required := bc.mask[name]; !required {
				continue
			}
		}

		desc, _ := cfg.Device(name)
		env.states[name] = StatePending

		dev, family, err := resolveDevice(bc, desc)
		if err != nil {
			env.states[name] = StateFailed
			if bc.mask != nil {
				bc.logger.Error("required device failed", "device", name, "error", err)
				return nil, fmt.Errorf("%w: device %q: %w", ErrConnectionAborted, name, err)
			}
			bc.logger.Warn("device failed, continuing", "device", name, "error", err)
			env.failures = append(env.failures, ResolveFailure{Name: name, Err: err})

			continue
		}

		env.devices[name] = dev
		env.order = append(env.order, name)
		env.states[name] = StateConnected
		bc.logger.Info("device connected", "device", name, "locator", desc.Address)

		if family == FamilyMultimeter {
			env.dmms.add(dmmShortName(name), dev)
		}

		if bc.init && len(desc.Init) > 0 {
			if runInitSequence(bc.logger, name, dev, desc.Init) {
				env.states[name] = StateInitialized
			} else {
				env.states[name] = StateInitPartial
			}
		}
	}

	return env, nil
}

func resolveDevice(bc *buildConfig, desc *config.DeviceDescriptor) (scpi.Device, Family, error) {
	factory, family, err := bc.drivers.Resolve(desc.Definition, desc.Object)
	if err != nil {
		return nil, FamilyNone, err
	}

	dev, err := factory(bc.registry, desc.Address, desc.Kwargs)
	if err != nil {
		return nil, family, err
	}

	return dev, family, nil
}

// dmmShortName derives the group name for a multimeter from its device name
// by dropping the "DMM" marker, e.g. "v_out_DMM" registers as "v_out".
func dmmShortName(name string) string {
	short := strings.Trim(strings.ReplaceAll(name, "DMM", ""), "_")
	if short == "" {
		return name
	}
	return short
}

// runInitSequence executes a device's declared init steps in order. Steps
// naming an unrecognized operation are skipped and reported; a failing step
// is reported and does not stop the remaining steps. Returns whether every
// step ran successfully.
func runInitSequence(log logger.Logger, name string, dev scpi.Device, steps []config.InitStep) bool {
	ops := scpi.StandardOperations(dev)
	if provider, ok := dev.(scpi.OperationProvider); ok {
		for method, op := range provider.Operations() {
			ops[method] = op
		}
	}

	complete := true
	for _, step := range steps {
		op, ok := ops[step.Method]
		if !ok {
			log.Warn("skipping unrecognized init operation", "device", name, "operation", step.Method)
			complete = false

			continue
		}
		if err := op(step.Args); err != nil {
			log.Warn("init operation failed", "device", name, "operation", step.Method, "error", err)
			complete = false
		}
	}

	return complete
}

// Device returns the connected device registered under name.
func (e *Environment) Device(name string) (scpi.Device, bool) {
	dev, ok := e.devices[name]
	return dev, ok
}

// Names returns the names of all connected devices in resolution order.
func (e *Environment) Names() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)

	return names
}

// Len returns the number of connected devices.
func (e *Environment) Len() int { return len(e.order) }

// State returns the resolution state of a configured device name.
// Devices filtered out by the mask report StatePending.
func (e *Environment) State(name string) DeviceState {
	return e.states[name]
}

// Failures returns the recorded failures of optional devices. Empty when a
// mask was supplied, since any masked failure aborts resolution instead.
func (e *Environment) Failures() []ResolveFailure {
	failures := make([]ResolveFailure, len(e.failures))
	copy(failures, e.failures)

	return failures
}

// DMMs returns the environment's multimeter group. The group is empty when
// no multimeter-family device connected.
func (e *Environment) DMMs() *DMMGroup { return e.dmms }
