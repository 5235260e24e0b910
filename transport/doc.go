// Package transport provides the physical-transport layer for go-bench:
// parsing of VISA-style resource locators, transport handles for serial,
// TCP socket and GPIB (Prologix/AR488-class adapter) endpoints, and the
// process-wide session registry that guarantees at most one open session
// per serial endpoint.
//
// The payload carried over a handle is opaque text; SCPI semantics live in
// the scpi package and above.
//
// Locators:
//
// Resource locators follow the VISA resource string syntax:
//   - ASRL/dev/ttyUSB0::INSTR or ASRL1::INSTR (serial)
//   - TCPIP0::192.168.0.5::5025::SOCKET (raw TCP socket)
//   - GPIB0::22::INSTR (GPIB device at primary address 22)
//   - USB0::0x1698::0x0837::002000000655::INSTR (USB, opener supplied by the integrator)
//
// Registry:
//
// Opening the same serial port twice at the driver layer raises an
// exclusivity error, so the Registry deduplicates serial-style locators by
// their short form (the controller-level identifier before the first "::").
// Acquiring a handle for an already-open serial short form returns the
// existing handle. Registry entries live for the process lifetime; there is
// no teardown path.
//
// GPIB locators are routed through a shared Prologix-style controller per
// board, so any number of GPIB device handles multiplex one underlying
// serial or TCP handle.
package transport
