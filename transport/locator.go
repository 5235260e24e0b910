package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the physical transport class of a resource locator.
type Kind int

const (
	KindUnknown Kind = iota
	KindSerial
	KindTCP
	KindGPIB
	KindUSB
)

func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindTCP:
		return "tcp"
	case KindGPIB:
		return "gpib"
	case KindUSB:
		return "usb"
	default:
		return "unknown"
	}
}

// Locator is a parsed VISA-style resource string addressing one physical
// instrument endpoint.
type Locator struct {
	raw        string
	kind       Kind
	board      string
	serialPort string
	host       string
	tcpPort    int
	busAddr    int
}

// ParseLocator parses a VISA-style resource string.
//
// Supported forms:
//   - ASRL<port>::INSTR, where <port> is a device path (/dev/ttyUSB0) or a
//     numeric port index
//   - TCPIP<n>::<host>::<port>::SOCKET
//   - GPIB<n>::<primary address>::INSTR
//   - USB<n>::<vid>::<pid>::<serial>::INSTR
func ParseLocator(s string) (Locator, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: empty string", ErrInvalidLocator)
	}

	fields := strings.Split(raw, "::")
	board := fields[0]
	upper := strings.ToUpper(board)

	loc := Locator{raw: raw, board: board, busAddr: -1}

	switch {
	case strings.HasPrefix(upper, "ASRL"):
		loc.kind = KindSerial
		port := board[len("ASRL"):]
		if port == "" {
			return Locator{}, fmt.Errorf("%w: %q has no serial port", ErrInvalidLocator, raw)
		}
		if n, err := strconv.Atoi(port); err == nil {
			port = fmt.Sprintf("/dev/ttyS%d", n)
		}
		loc.serialPort = port

	case strings.HasPrefix(upper, "TCPIP"):
		loc.kind = KindTCP
		if len(fields) < 3 {
			return Locator{}, fmt.Errorf("%w: %q needs host and port", ErrInvalidLocator, raw)
		}
		loc.host = fields[1]
		port, err := strconv.Atoi(fields[2])
		if err != nil || port < 1 || port > 65535 {
			return Locator{}, fmt.Errorf("%w: %q has invalid TCP port", ErrInvalidLocator, raw)
		}
		loc.tcpPort = port

	case strings.HasPrefix(upper, "GPIB"):
		loc.kind = KindGPIB
		if len(fields) < 2 {
			return Locator{}, fmt.Errorf("%w: %q needs a primary address", ErrInvalidLocator, raw)
		}
		addr, err := strconv.Atoi(fields[1])
		if err != nil || addr < 0 || addr > 30 {
			return Locator{}, fmt.Errorf("%w: %q has invalid GPIB address", ErrInvalidLocator, raw)
		}
		loc.busAddr = addr

	case strings.HasPrefix(upper, "USB"):
		loc.kind = KindUSB

	default:
		return Locator{}, fmt.Errorf("%w: %q has unknown transport prefix", ErrInvalidLocator, raw)
	}

	return loc, nil
}

// Raw returns the original resource string.
func (l Locator) Raw() string { return l.raw }

func (l Locator) String() string { return l.raw }

// Kind returns the transport class of the locator.
func (l Locator) Kind() Kind { return l.kind }

// Board returns the controller-level identifier, e.g. "ASRL/dev/ttyUSB0",
// "GPIB0" or "TCPIP0".
func (l Locator) Board() string { return l.board }

// ShortForm returns the controller-level portion of the locator, uppercased,
// used as the dedup key for serial-style endpoints.
func (l Locator) ShortForm() string { return strings.ToUpper(l.board) }

// SerialPort returns the serial device path for serial locators, e.g.
// "/dev/ttyUSB0". Empty for other kinds.
func (l Locator) SerialPort() string { return l.serialPort }

// Host returns the remote host for TCP locators. Empty for other kinds.
func (l Locator) Host() string { return l.host }

// TCPPort returns the remote port for TCP locators. Zero for other kinds.
func (l Locator) TCPPort() int { return l.tcpPort }

// BusAddress returns the GPIB primary address for GPIB locators, -1 for
// other kinds.
func (l Locator) BusAddress() int { return l.busAddr }
