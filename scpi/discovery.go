package scpi

import (
	"strings"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/transport"
)

// DeviceIdentity pairs a resource locator with the identification string the
// device at that locator answered with.
type DeviceIdentity struct {
	Locator  string
	Identity string
}

// IdentifyDevices probes every candidate locator with an *IDN? query and
// returns a pair for each device that answered. Locators that fail to parse,
// open or respond are skipped, not fatal.
//
// Combine with transport.AvailableLocators to survey a bench:
//
//	found := scpi.IdentifyDevices(reg, transport.AvailableLocators())
func IdentifyDevices(reg *transport.Registry, locators []string) []DeviceIdentity {
	log := logger.GetLogger()

	var found []DeviceIdentity
	for _, raw := range locators {
		loc, err := transport.ParseLocator(raw)
		if err != nil {
			log.Debug("skipping unparseable locator", "locator", raw, "error", err)
			continue
		}

		handle, err := reg.Acquire(loc, nil)
		if err != nil {
			log.Debug("probe open failed", "locator", raw, "error", err)
			continue
		}

		idn, err := handle.Query("*IDN?")
		// serial handles are registry-owned for the process lifetime,
		// everything else was opened just for this probe
		if loc.Kind() != transport.KindSerial {
			_ = handle.Close()
		}
		if err != nil {
			log.Debug("no identity response", "locator", raw, "error", err)
			continue
		}

		found = append(found, DeviceIdentity{Locator: raw, Identity: strings.TrimSpace(idn)})
	}

	return found
}
