package bench

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/scpi"
)

// DMMGroup is the environment's named collection of multimeter-family
// devices, supporting aggregate operations across all members. It is derived
// during resolution and read-only afterward.
type DMMGroup struct {
	names   []string
	members map[string]scpi.Device
	logger  logger.Logger
}

func newDMMGroup(log logger.Logger) *DMMGroup {
	return &DMMGroup{
		members: make(map[string]scpi.Device),
		logger:  log,
	}
}

func (g *DMMGroup) add(name string, dev scpi.Device) {
	if _, exists := g.members[name]; exists {
		// two multimeters deriving the same short name keep their full names apart
		name = name + "_" + fmt.Sprint(len(g.names))
	}
	g.names = append(g.names, name)
	g.members[name] = dev
}

// Len returns the number of group members.
func (g *DMMGroup) Len() int { return len(g.names) }

// Names returns the member names in registration order.
func (g *DMMGroup) Names() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)

	return names
}

// Member returns the device registered under name.
func (g *DMMGroup) Member(name string) (scpi.Device, bool) {
	dev, ok := g.members[name]
	return dev, ok
}

// FetchAll fetches a measurement from every member and collects the results.
//
// Results are keyed by member name, or by the remapped label when mapper has
// an entry for the member. With onlyMapped set, members without a mapper
// entry are dropped from the result instead of kept under their own name.
//
// A member's fetch failure aborts the aggregate call and propagates; the
// measurements gathered before the failure are returned alongside the error.
func (g *DMMGroup) FetchAll(mapper map[string]string, onlyMapped bool) (map[string]float64, error) {
	measurements := make(map[string]float64, len(g.names))
	for _, name := range g.names {
		label, mapped := mapper[name]
		if !mapped {
			if onlyMapped {
				continue
			}
			label = name
		}

		fetcher, ok := g.members[name].(scpi.MeasurementFetcher)
		if !ok {
			return measurements, fmt.Errorf("bench: dmm %q does not support measurement fetch", name)
		}
		value, err := fetcher.FetchMeasurement()
		if err != nil {
			return measurements, fmt.Errorf("bench: fetch %q: %w", name, err)
		}
		measurements[label] = value
	}

	return measurements, nil
}

// InitAll arms the trigger of every member that supports arming, silently
// skipping the rest. Errors from individual members are joined; every member
// is still attempted.
func (g *DMMGroup) InitAll() error {
	var errs []error
	for _, name := range g.names {
		armer, ok := g.members[name].(scpi.TriggerArmer)
		if !ok {
			continue
		}
		if err := armer.ArmTrigger(); err != nil {
			errs = append(errs, fmt.Errorf("bench: arm %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// ResetAll resets every member. Errors are joined; every member is still
// attempted.
func (g *DMMGroup) ResetAll() error {
	var errs []error
	for _, name := range g.names {
		if err := g.members[name].Reset(); err != nil {
			errs = append(errs, fmt.Errorf("bench: reset %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// SetLocalAll returns every member to local front-panel control. Errors are
// joined; every member is still attempted.
func (g *DMMGroup) SetLocalAll() error {
	var errs []error
	for _, name := range g.names {
		if err := g.members[name].SetLocal(); err != nil {
			errs = append(errs, fmt.Errorf("bench: set local %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
