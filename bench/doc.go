// Package bench resolves a declarative equipment configuration into a live
// test environment.
//
// Resolution walks the configuration in document order, resolves each
// descriptor's (definition, object) pair against a driver registry,
// constructs the instrument session, and registers it under the device name.
// A required-device mask makes resolution all-or-nothing for the named
// devices; without a mask, partial success is the normal outcome and
// failures are recorded, not fatal.
//
// Multimeter-family devices are additionally gathered into a DMMGroup for
// aggregate fetch, arm, reset and local-mode operations.
//
// Successfully opened sessions are never rolled back: a partially failed
// resolution leaves every connected device open and reachable through the
// environment and the transport registry.
package bench
