package transport

import "path/filepath"

// serialGlobs are the device paths scanned for serial endpoints.
var serialGlobs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
}

// AvailableLocators enumerates candidate resource locators reachable from
// this host: every serial device present on the system, formatted as a
// serial locator, followed by the extra locators passed in (network
// instruments cannot be enumerated, callers list the ones they expect).
//
// The result is a candidate list; whether an instrument answers on a locator
// is established by probing it, see scpi.IdentifyDevices.
func AvailableLocators(extra ...string) []string {
	var locs []string
	for _, pattern := range serialGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, dev := range matches {
			locs = append(locs, "ASRL"+dev+"::INSTR")
		}
	}

	return append(locs, extra...)
}
