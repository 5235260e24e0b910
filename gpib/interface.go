// Package gpib exposes group-addressed operations on a shared GPIB bus.
//
// GPIB is a multi-drop bus: every instrument on a board shares one
// controller, and the controller can address several instruments with a
// single bus command. The Interface type wraps a board's controller and
// fans one coordinated group execute trigger out to any number of sessions,
// something sequential per-device triggers cannot do without timing skew.
package gpib

import (
	"fmt"

	"github.com/arloliu/go-bench/logger"
	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

// Interface wraps one shared GPIB controller resource.
type Interface struct {
	ctrl   *transport.PrologixController
	logger logger.Logger
}

// NewInterface returns the bus interface for a GPIB board, e.g. "GPIB0".
// The board's controller must be configured on the registry via
// transport.WithGPIBController.
func NewInterface(reg *transport.Registry, board string) (*Interface, error) {
	ctrl, err := reg.Controller(board)
	if err != nil {
		return nil, err
	}

	return &Interface{
		ctrl:   ctrl,
		logger: logger.GetLogger().With("board", board),
	}, nil
}

// Board returns the GPIB board name this interface serves.
func (i *Interface) Board() string { return i.ctrl.Board() }

type handleProvider interface {
	Handle() transport.Handle
}

// GroupTrigger issues a single coordinated group execute trigger addressing
// all given sessions simultaneously.
//
// Every session must be reachable through this interface's controller;
// passing a session on another transport or another board is a caller error
// reported as a transport failure.
func (i *Interface) GroupTrigger(devices ...scpi.Device) error {
	addrs := make([]int, 0, len(devices))
	for _, dev := range devices {
		hp, ok := dev.(handleProvider)
		if !ok {
			return fmt.Errorf("%w: device %s exposes no transport handle", transport.ErrIO, dev.Locator())
		}
		pd, ok := hp.Handle().(*transport.PrologixDevice)
		if !ok || pd.Controller() != i.ctrl {
			return fmt.Errorf("%w: device %s is not reachable via %s", transport.ErrIO, dev.Locator(), i.ctrl.Board())
		}
		addrs = append(addrs, pd.BusAddress())
	}

	i.logger.Debug("group execute trigger", "addrs", addrs)

	return i.ctrl.GroupTrigger(addrs...)
}
