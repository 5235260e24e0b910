package transport

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-bench/logger"
)

// PrologixController drives a Prologix/AR488-class GPIB controller adapter
// through an underlying serial or TCP handle. All GPIB device handles on the
// same board share one controller, which serializes bus traffic and keeps
// track of the currently addressed primary address.
//
// It implements GroupTriggerer: a single "++trg" command triggers every
// listed address simultaneously, which sequential per-device triggers cannot
// do without timing skew.
type PrologixController struct {
	mu      sync.Mutex
	board   string
	port    Handle
	curAddr int
	logger  logger.Logger
}

var _ GroupTriggerer = (*PrologixController)(nil)

// NewPrologixController puts the adapter behind port into controller mode
// with manual read-after-write and returns the controller for the given
// board name.
func NewPrologixController(board string, port Handle) (*PrologixController, error) {
	c := &PrologixController{
		board:   board,
		port:    port,
		curAddr: -1,
		logger:  logger.GetLogger().With("board", board, "handle_id", HandleID(port)),
	}

	for _, cmd := range []string{"++mode 1", "++auto 0", "++eoi 1"} {
		if err := port.Write(cmd); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailure, board, err)
		}
	}
	c.logger.Info("prologix controller ready")

	return c, nil
}

// Board returns the GPIB board name this controller serves, e.g. "GPIB0".
func (c *PrologixController) Board() string { return c.board }

// Port returns the underlying transport handle of the adapter.
func (c *PrologixController) Port() Handle { return c.port }

// Device returns a handle addressing the instrument at the locator's primary
// address through this controller.
func (c *PrologixController) Device(loc Locator) *PrologixDevice {
	return &PrologixDevice{ctrl: c, loc: loc, addr: loc.BusAddress()}
}

// GroupTrigger issues one coordinated group execute trigger to all listed
// primary addresses.
func (c *PrologixController) GroupTrigger(addrs ...int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := make([]string, 0, len(addrs)+1)
	parts = append(parts, "++trg")
	for _, addr := range addrs {
		parts = append(parts, strconv.Itoa(addr))
	}
	c.logger.Debug("group trigger", "addrs", addrs)

	return c.port.Write(strings.Join(parts, " "))
}

// address switches the adapter's talk address. Callers hold c.mu.
func (c *PrologixController) address(addr int) error {
	if c.curAddr == addr {
		return nil
	}
	if err := c.port.Write("++addr " + strconv.Itoa(addr)); err != nil {
		return err
	}
	c.curAddr = addr

	return nil
}

// PrologixDevice is a Handle addressing one GPIB instrument through a shared
// PrologixController. Every operation addresses the bus first, and the whole
// operation holds the controller lock, so traffic from sessions on the same
// bus never interleaves.
type PrologixDevice struct {
	ctrl *PrologixController
	loc  Locator
	addr int
}

var (
	_ Handle          = (*PrologixDevice)(nil)
	_ LocalController = (*PrologixDevice)(nil)
)

// Controller returns the shared controller this device is reachable through.
func (d *PrologixDevice) Controller() *PrologixController { return d.ctrl }

// BusAddress returns the instrument's GPIB primary address.
func (d *PrologixDevice) BusAddress() int { return d.addr }

func (d *PrologixDevice) Locator() Locator { return d.loc }

func (d *PrologixDevice) Write(cmd string) error {
	d.ctrl.mu.Lock()
	defer d.ctrl.mu.Unlock()

	if err := d.ctrl.address(d.addr); err != nil {
		return err
	}
	return d.ctrl.port.Write(cmd)
}

func (d *PrologixDevice) Read() (string, error) {
	d.ctrl.mu.Lock()
	defer d.ctrl.mu.Unlock()

	return d.read()
}

func (d *PrologixDevice) Query(cmd string) (string, error) {
	d.ctrl.mu.Lock()
	defer d.ctrl.mu.Unlock()

	if err := d.ctrl.address(d.addr); err != nil {
		return "", err
	}
	if err := d.ctrl.port.Write(cmd); err != nil {
		return "", err
	}
	return d.read()
}

// read asks the adapter to read from the addressed device until EOI.
// Callers hold the controller lock.
func (d *PrologixDevice) read() (string, error) {
	if err := d.ctrl.address(d.addr); err != nil {
		return "", err
	}
	if err := d.ctrl.port.Write("++read eoi"); err != nil {
		return "", err
	}
	return d.ctrl.port.Read()
}

// SetLocal returns the addressed instrument to local front-panel control.
func (d *PrologixDevice) SetLocal() error {
	d.ctrl.mu.Lock()
	defer d.ctrl.mu.Unlock()

	if err := d.ctrl.address(d.addr); err != nil {
		return err
	}
	return d.ctrl.port.Write("++loc")
}

// SetTimeout forwards to the shared adapter handle; sessions on the same bus
// share the response timeout, as they share the transport.
func (d *PrologixDevice) SetTimeout(t time.Duration) {
	d.ctrl.port.SetTimeout(t)
}

func (d *PrologixDevice) Timeout() time.Duration {
	return d.ctrl.port.Timeout()
}

// Close is a no-op; the adapter handle is registry-owned and lives for the
// process lifetime.
func (d *PrologixDevice) Close() error { return nil }
