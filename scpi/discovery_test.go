package scpi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-bench/transport"
)

func TestIdentifyDevices(t *testing.T) {
	answering := transport.NewMockHandle("ASRL/dev/ttyUSB0::INSTR")
	answering.On("Query", "*IDN?").Return("B&K,2831E,0,1.0\n", nil).Once()

	silent := transport.NewMockHandle("ASRL/dev/ttyUSB1::INSTR")
	silent.On("Query", "*IDN?").Return("", errors.New("timeout")).Once()

	handles := map[string]transport.Handle{
		"/dev/ttyUSB0": answering,
		"/dev/ttyUSB1": silent,
	}
	reg := transport.NewRegistry(transport.WithOpener(transport.KindSerial,
		func(loc transport.Locator, opts transport.Options) (transport.Handle, error) {
			return handles[loc.SerialPort()], nil
		}))

	found := IdentifyDevices(reg, []string{
		"not-a-locator",
		"ASRL/dev/ttyUSB0::INSTR",
		"ASRL/dev/ttyUSB1::INSTR",
	})

	require.Len(t, found, 1)
	assert.Equal(t, "ASRL/dev/ttyUSB0::INSTR", found[0].Locator)
	assert.Equal(t, "B&K,2831E,0,1.0", found[0].Identity, "identity is trimmed")
	answering.AssertExpectations(t)
	silent.AssertExpectations(t)
}
