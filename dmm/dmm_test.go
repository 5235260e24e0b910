package dmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-bench/bench"
	"github.com/arloliu/go-bench/transport"
)

func newMeter(t *testing.T, h transport.Handle) *SCPIMultimeter {
	t.Helper()

	reg := transport.NewRegistry(transport.WithOpener(transport.KindTCP,
		func(loc transport.Locator, opts transport.Options) (transport.Handle, error) {
			return h, nil
		}))

	m, err := New(reg, "TCPIP0::10.0.0.5::5025::SOCKET", nil)
	require.NoError(t, err)

	return m
}

func TestRegistersWithDefaultDrivers(t *testing.T) {
	factory, family, err := bench.DefaultDrivers().Resolve(Namespace, Object)
	require.NoError(t, err)
	assert.NotNil(t, factory)
	assert.Equal(t, bench.FamilyMultimeter, family)
}

func TestFetchMeasurement(t *testing.T) {
	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	h.On("Query", "FETC?").Return("+5.00321E+00\n", nil).Once()
	m := newMeter(t, h)

	value, err := m.FetchMeasurement()
	require.NoError(t, err)
	assert.InDelta(t, 5.00321, value, 1e-9)
	h.AssertExpectations(t)
}

func TestFetchMeasurement_BadResponse(t *testing.T) {
	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	h.On("Query", "FETC?").Return("OVERLOAD", nil).Once()
	m := newMeter(t, h)

	_, err := m.FetchMeasurement()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OVERLOAD")
}

func TestArmTrigger(t *testing.T) {
	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	h.On("Write", "INIT").Return(nil).Once()
	m := newMeter(t, h)

	require.NoError(t, m.ArmTrigger())
	h.AssertExpectations(t)
}

func TestOperations(t *testing.T) {
	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	h.On("Write", "INIT").Return(nil).Once()
	h.On("Write", `FUNC "VOLT:DC"`).Return(nil).Once()
	m := newMeter(t, h)

	ops := m.Operations()
	require.NoError(t, ops["arm"](nil))
	require.NoError(t, ops["set_function"](map[string]any{"function": "VOLT:DC"}))

	err := ops["set_function"](nil)
	assert.Error(t, err, "set_function requires a function argument")
	h.AssertExpectations(t)
}

func TestDeviceType(t *testing.T) {
	h := transport.NewMockHandle("TCPIP0::10.0.0.5::5025::SOCKET")
	m := newMeter(t, h)

	assert.Equal(t, Object, m.DeviceType())
}
