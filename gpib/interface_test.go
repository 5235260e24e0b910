package gpib

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-bench/scpi"
	"github.com/arloliu/go-bench/transport"
)

// busPort is an in-memory serial port standing in for a GPIB adapter.
type busPort struct {
	mu      sync.Mutex
	loc     transport.Locator
	timeout time.Duration
	writes  []string
}

var _ transport.Handle = (*busPort)(nil)

func (p *busPort) Locator() transport.Locator { return p.loc }

func (p *busPort) Write(cmd string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, cmd)
	return nil
}

func (p *busPort) Read() (string, error) { return "", nil }

func (p *busPort) Query(cmd string) (string, error) {
	if err := p.Write(cmd); err != nil {
		return "", err
	}
	return p.Read()
}

func (p *busPort) SetTimeout(d time.Duration) { p.timeout = d }

func (p *busPort) Timeout() time.Duration { return p.timeout }

func (p *busPort) Close() error { return nil }

func (p *busPort) written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.writes))
	copy(out, p.writes)
	return out
}

func (p *busPort) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = nil
}

func newBusRegistry(t *testing.T) (*transport.Registry, *busPort) {
	t.Helper()

	port := &busPort{}
	reg := transport.NewRegistry(
		transport.WithOpener(transport.KindSerial,
			func(loc transport.Locator, opts transport.Options) (transport.Handle, error) {
				port.loc = loc
				return port, nil
			}),
		transport.WithGPIBController("GPIB0", "ASRL/dev/ttyUSB0::INSTR"),
	)

	return reg, port
}

func TestNewInterface_UnknownBoard(t *testing.T) {
	reg := transport.NewRegistry()

	_, err := NewInterface(reg, "GPIB0")
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrNoController)
}

func TestGroupTrigger(t *testing.T) {
	reg, port := newBusRegistry(t)

	meter, err := scpi.Open(reg, "GPIB0::5::INSTR")
	require.NoError(t, err)
	source, err := scpi.Open(reg, "GPIB0::7::INSTR")
	require.NoError(t, err)

	iface, err := NewInterface(reg, "GPIB0")
	require.NoError(t, err)
	assert.Equal(t, "GPIB0", iface.Board())

	port.clear()
	require.NoError(t, iface.GroupTrigger(meter, source))
	assert.Equal(t, []string{"++trg 5 7"}, port.written(),
		"one bus command triggers all addressed devices")
}

func TestGroupTrigger_ForeignTransport(t *testing.T) {
	reg, _ := newBusRegistry(t)

	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	tcpReg := transport.NewRegistry(transport.WithOpener(transport.KindTCP,
		func(loc transport.Locator, opts transport.Options) (transport.Handle, error) {
			return h, nil
		}))
	outsider, err := scpi.Open(tcpReg, "TCPIP0::10.0.0.5::5025::SOCKET")
	require.NoError(t, err)

	iface, err := NewInterface(reg, "GPIB0")
	require.NoError(t, err)

	err = iface.GroupTrigger(outsider)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrIO)
}

func TestGroupTrigger_ForeignBoard(t *testing.T) {
	regA, _ := newBusRegistry(t)

	portB := &busPort{}
	regB := transport.NewRegistry(
		transport.WithOpener(transport.KindSerial,
			func(loc transport.Locator, opts transport.Options) (transport.Handle, error) {
				portB.loc = loc
				return portB, nil
			}),
		transport.WithGPIBController("GPIB0", "ASRL/dev/ttyUSB1::INSTR"),
	)

	dev, err := scpi.Open(regB, "GPIB0::5::INSTR")
	require.NoError(t, err)

	iface, err := NewInterface(regA, "GPIB0")
	require.NoError(t, err)

	err = iface.GroupTrigger(dev)
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrIO)
	assert.Contains(t, err.Error(), "not reachable")
}
