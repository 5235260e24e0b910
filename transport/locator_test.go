package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator_Serial(t *testing.T) {
	loc, err := ParseLocator("ASRL/dev/ttyUSB0::INSTR")
	require.NoError(t, err)

	assert.Equal(t, KindSerial, loc.Kind())
	assert.Equal(t, "ASRL/dev/ttyUSB0", loc.Board())
	assert.Equal(t, "ASRL/DEV/TTYUSB0", loc.ShortForm())
	assert.Equal(t, "/dev/ttyUSB0", loc.SerialPort())
	assert.Equal(t, "ASRL/dev/ttyUSB0::INSTR", loc.Raw())
}

func TestParseLocator_SerialNumeric(t *testing.T) {
	loc, err := ParseLocator("ASRL3::INSTR")
	require.NoError(t, err)

	assert.Equal(t, KindSerial, loc.Kind())
	assert.Equal(t, "/dev/ttyS3", loc.SerialPort())
	assert.Equal(t, "ASRL3", loc.ShortForm())
}

func TestParseLocator_TCP(t *testing.T) {
	loc, err := ParseLocator("TCPIP0::192.168.0.5::5025::SOCKET")
	require.NoError(t, err)

	assert.Equal(t, KindTCP, loc.Kind())
	assert.Equal(t, "192.168.0.5", loc.Host())
	assert.Equal(t, 5025, loc.TCPPort())
}

func TestParseLocator_GPIB(t *testing.T) {
	loc, err := ParseLocator("GPIB0::22::INSTR")
	require.NoError(t, err)

	assert.Equal(t, KindGPIB, loc.Kind())
	assert.Equal(t, "GPIB0", loc.Board())
	assert.Equal(t, 22, loc.BusAddress())
}

func TestParseLocator_USB(t *testing.T) {
	loc, err := ParseLocator("USB0::0x1698::0x0837::002000000655::INSTR")
	require.NoError(t, err)

	assert.Equal(t, KindUSB, loc.Kind())
}

func TestParseLocator_Invalid(t *testing.T) {
	cases := []string{
		"",
		"FOO::1::INSTR",
		"ASRL::INSTR",
		"TCPIP0::host",
		"TCPIP0::host::notaport::SOCKET",
		"TCPIP0::host::70000::SOCKET",
		"GPIB0::INSTR",
		"GPIB0::31::INSTR",
		"GPIB0::abc::INSTR",
	}
	for _, raw := range cases {
		_, err := ParseLocator(raw)
		require.Error(t, err, "locator %q", raw)
		assert.ErrorIs(t, err, ErrInvalidLocator, "locator %q", raw)
	}
}

func TestParseLocator_ShortFormDistinct(t *testing.T) {
	a, err := ParseLocator("ASRL/dev/ttyUSB0::INSTR")
	require.NoError(t, err)
	b, err := ParseLocator("ASRL/dev/ttyUSB1::INSTR")
	require.NoError(t, err)

	assert.NotEqual(t, a.ShortForm(), b.ShortForm())
}
