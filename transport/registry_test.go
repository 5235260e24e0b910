package transport

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHandle is a minimal in-memory handle for registry tests.
type stubHandle struct {
	loc     Locator
	timeout time.Duration
	writes  []string
	reads   []string
	closed  bool
}

func (h *stubHandle) Locator() Locator { return h.loc }

func (h *stubHandle) Write(cmd string) error {
	h.writes = append(h.writes, cmd)
	return nil
}

func (h *stubHandle) Read() (string, error) {
	if len(h.reads) == 0 {
		return "", ErrTimeout
	}
	resp := h.reads[0]
	h.reads = h.reads[1:]

	return resp, nil
}

func (h *stubHandle) Query(cmd string) (string, error) {
	if err := h.Write(cmd); err != nil {
		return "", err
	}
	return h.Read()
}

func (h *stubHandle) SetTimeout(d time.Duration) { h.timeout = d }

func (h *stubHandle) Timeout() time.Duration { return h.timeout }

func (h *stubHandle) Close() error {
	h.closed = true
	return nil
}

// stubOpener returns an opener that counts opens and hands out fresh stubs.
func stubOpener(opened *[]*stubHandle) OpenFunc {
	return func(loc Locator, opts Options) (Handle, error) {
		h := &stubHandle{loc: loc, timeout: opts.Duration("timeout", DefaultTimeout)}
		*opened = append(*opened, h)

		return h, nil
	}
}

func TestRegistry_SerialDedup(t *testing.T) {
	var opened []*stubHandle
	reg := NewRegistry(WithOpener(KindSerial, stubOpener(&opened)))

	h1, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.NoError(t, err)
	h2, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.NoError(t, err)

	// same short form shares one physical handle
	assert.Same(t, h1, h2)
	assert.Len(t, opened, 1)
}

func TestRegistry_SerialDistinctLocators(t *testing.T) {
	var opened []*stubHandle
	reg := NewRegistry(WithOpener(KindSerial, stubOpener(&opened)))

	h1, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.NoError(t, err)
	h2, err := reg.AcquireString("ASRL/dev/ttyUSB1::INSTR", nil)
	require.NoError(t, err)

	assert.NotSame(t, h1, h2)
	assert.Len(t, opened, 2)
}

func TestRegistry_TCPAlwaysFresh(t *testing.T) {
	var opened []*stubHandle
	reg := NewRegistry(WithOpener(KindTCP, stubOpener(&opened)))

	h1, err := reg.AcquireString("TCPIP0::10.0.0.5::5025::SOCKET", nil)
	require.NoError(t, err)
	h2, err := reg.AcquireString("TCPIP0::10.0.0.5::5025::SOCKET", nil)
	require.NoError(t, err)

	assert.NotSame(t, h1, h2)
	assert.Len(t, opened, 2)
}

func TestRegistry_OpenFailurePropagates(t *testing.T) {
	reg := NewRegistry(WithOpener(KindSerial, func(loc Locator, opts Options) (Handle, error) {
		return nil, fmt.Errorf("%w: %s: port busy", ErrConnectionFailure, loc.Raw())
	}))

	_, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailure)
	assert.Contains(t, err.Error(), "ASRL/dev/ttyUSB0::INSTR")
}

func TestRegistry_FailedOpenNotCached(t *testing.T) {
	fail := true
	var opened []*stubHandle
	open := stubOpener(&opened)
	reg := NewRegistry(WithOpener(KindSerial, func(loc Locator, opts Options) (Handle, error) {
		if fail {
			return nil, fmt.Errorf("%w: %s", ErrConnectionFailure, loc.Raw())
		}
		return open(loc, opts)
	}))

	_, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.Error(t, err)

	fail = false
	h, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Len(t, opened, 1)
}

func TestRegistry_NoOpenerForUSB(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.AcquireString("USB0::0x1698::0x0837::002000000655::INSTR", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoOpener)
}

func TestRegistry_GPIBNoController(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.AcquireString("GPIB0::5::INSTR", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoController)
}

func TestRegistry_GPIBSharesControllerPort(t *testing.T) {
	var opened []*stubHandle
	reg := NewRegistry(
		WithOpener(KindSerial, stubOpener(&opened)),
		WithGPIBController("GPIB0", "ASRL/dev/ttyUSB0::INSTR"),
	)

	h1, err := reg.AcquireString("GPIB0::5::INSTR", nil)
	require.NoError(t, err)
	h2, err := reg.AcquireString("GPIB0::7::INSTR", nil)
	require.NoError(t, err)

	// two GPIB devices, one adapter port
	require.Len(t, opened, 1)

	d1, ok := h1.(*PrologixDevice)
	require.True(t, ok)
	d2, ok := h2.(*PrologixDevice)
	require.True(t, ok)
	assert.Same(t, d1.Controller(), d2.Controller())
	assert.Equal(t, 5, d1.BusAddress())
	assert.Equal(t, 7, d2.BusAddress())
}

func TestRegistry_GPIBControllerSharedWithSerialSession(t *testing.T) {
	var opened []*stubHandle
	reg := NewRegistry(
		WithOpener(KindSerial, stubOpener(&opened)),
		WithGPIBController("GPIB0", "ASRL/dev/ttyUSB0::INSTR"),
	)

	serial, err := reg.AcquireString("ASRL/dev/ttyUSB0::INSTR", nil)
	require.NoError(t, err)

	gpib, err := reg.AcquireString("GPIB0::5::INSTR", nil)
	require.NoError(t, err)

	// the adapter reuses the already-open serial handle
	require.Len(t, opened, 1)
	dev, ok := gpib.(*PrologixDevice)
	require.True(t, ok)
	assert.Same(t, serial, dev.Controller().Port())
}
