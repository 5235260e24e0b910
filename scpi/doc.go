// Package scpi provides the instrument session layer of go-bench: a uniform
// request/response wrapper around one transport handle, the capability
// interfaces consumed from instrument drivers, and identity-probe discovery.
//
// An Instrument owns its locator and timeout and passes SCPI command text
// through unparsed. The IEEE 488.2 common commands (*IDN?, *CLS, *RST) are
// the only commands this layer knows about; everything instrument-specific
// belongs to driver packages built on top of Instrument.
//
// Session equality is defined by device type and locator string, never by
// transport-handle identity: two independently constructed sessions of the
// same type at the same address compare equal whether or not they share the
// underlying handle. See Equal.
package scpi
