package bench

import (
	"fmt"
	"sync"

	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

// Family tags a driver type as belonging to a capability family, a group of
// devices exposing a common aggregate operation set.
type Family int

const (
	// FamilyNone is the default family with no aggregate operations.
	FamilyNone Family = iota

	// FamilyMultimeter gathers devices into the environment's DMMGroup.
	FamilyMultimeter
)

// Factory constructs a connected instrument session for one device
// descriptor. Construction acquires the transport handle, so a factory call
// is a connection attempt.
type Factory func(reg *transport.Registry, address string, kwargs map[string]any) (scpi.Device, error)

type driverEntry struct {
	factory Factory
	family  Family
}

// DriverRegistry maps (namespace, object) pairs from configuration
// descriptors to driver factories. Drivers register at startup; resolution
// of unknown pairs fails with ErrUnsupportedDevice rather than falling back
// to reflection.
type DriverRegistry struct {
	mu      sync.RWMutex
	entries map[string]driverEntry
}

// NewDriverRegistry creates a driver registry pre-populated with the generic
// "scpi"/"Instrument" driver.
func NewDriverRegistry() *DriverRegistry {
	r := &DriverRegistry{entries: make(map[string]driverEntry)}
	r.MustRegister("scpi", "Instrument", FamilyNone, func(reg *transport.Registry, address string, kwargs map[string]any) (scpi.Device, error) {
		return scpi.Open(reg, address, scpi.WithKwargs(kwargs))
	})

	return r
}

func driverKey(namespace, object string) string {
	return namespace + "." + object
}

// Register adds a driver factory under a (namespace, object) pair.
// Registering an already-registered pair is an error.
func (r *DriverRegistry) Register(namespace, object string, family Family, factory Factory) error {
	if namespace == "" || object == "" {
		return fmt.Errorf("bench: driver namespace and object must be non-empty")
	}
	if factory == nil {
		return fmt.Errorf("bench: driver factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := driverKey(namespace, object)
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("bench: driver %s already registered", key)
	}
	r.entries[key] = driverEntry{factory: factory, family: family}

	return nil
}

// MustRegister is like Register but panics on error. Intended for driver
// package init functions.
func (r *DriverRegistry) MustRegister(namespace, object string, family Family, factory Factory) {
	if err := r.Register(namespace, object, family, factory); err != nil {
		panic(err)
	}
}

// Resolve returns the factory and family for a (namespace, object) pair, or
// an error wrapping ErrUnsupportedDevice when the pair is unknown.
func (r *DriverRegistry) Resolve(namespace, object string) (Factory, Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[driverKey(namespace, object)]
	if !ok {
		return nil, FamilyNone, fmt.Errorf("%w: %s", ErrUnsupportedDevice, driverKey(namespace, object))
	}

	return entry.factory, entry.family, nil
}

var defaultDrivers = NewDriverRegistry()

// DefaultDrivers returns the process-wide driver registry that driver
// packages register into at init time.
func DefaultDrivers() *DriverRegistry { return defaultDrivers }

// Register adds a driver factory to the default registry, panicking on a
// duplicate pair. Intended for driver package init functions.
func Register(namespace, object string, family Family, factory Factory) {
	defaultDrivers.MustRegister(namespace, object, family, factory)
}
