package bench

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-bench/logger"
)

func newTestGroup(members map[string]*fakeDMM, order ...string) *DMMGroup {
	g := newDMMGroup(logger.GetLogger())
	for _, name := range order {
		g.add(name, members[name])
	}
	return g
}

func TestDMMGroup_FetchAll(t *testing.T) {
	members := map[string]*fakeDMM{
		"v_in":  {fetchValue: 12.01},
		"v_out": {fetchValue: 5.003},
		"i_out": {fetchValue: 1.25},
	}
	g := newTestGroup(members, "v_in", "v_out", "i_out")

	got, err := g.FetchAll(nil, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"v_in": 12.01, "v_out": 5.003, "i_out": 1.25}, got)
}

func TestDMMGroup_FetchAllMapped(t *testing.T) {
	members := map[string]*fakeDMM{
		"v_in":  {fetchValue: 12.01},
		"v_out": {fetchValue: 5.003},
	}
	g := newTestGroup(members, "v_in", "v_out")
	mapper := map[string]string{"v_in": "input_voltage"}

	got, err := g.FetchAll(mapper, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"input_voltage": 12.01, "v_out": 5.003}, got)

	got, err = g.FetchAll(mapper, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"input_voltage": 12.01}, got,
		"only mapped members survive with onlyMapped set")
}

func TestDMMGroup_FetchAllPartialOnError(t *testing.T) {
	cause := errors.New("read timed out")
	members := map[string]*fakeDMM{
		"v_in":  {fetchValue: 12.01},
		"v_out": {fetchErr: cause},
		"i_out": {fetchValue: 1.25},
	}
	g := newTestGroup(members, "v_in", "v_out", "i_out")

	got, err := g.FetchAll(nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"v_out"`)
	assert.Equal(t, map[string]float64{"v_in": 12.01}, got,
		"measurements gathered before the failure are returned")
}

func TestDMMGroup_FetchAllNonFetcher(t *testing.T) {
	g := newDMMGroup(logger.GetLogger())
	g.add("v_in", &fakeDMM{fetchValue: 12.01})
	g.add("odd", &fakeDevice{locator: "GPIB0::5::INSTR", deviceType: "Device"})

	_, err := g.FetchAll(nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"odd"`)
}

func TestDMMGroup_DuplicateShortNames(t *testing.T) {
	g := newDMMGroup(logger.GetLogger())
	g.add("v_out", &fakeDMM{})
	g.add("v_out", &fakeDMM{})

	assert.Equal(t, []string{"v_out", "v_out_1"}, g.Names())
}

func TestDMMGroup_InitAll(t *testing.T) {
	armed := &fakeDMM{}
	failing := &fakeDMM{armErr: errors.New("trigger subsystem busy")}
	g := newDMMGroup(logger.GetLogger())
	g.add("good", armed)
	g.add("bad", failing)
	g.add("plain", &fakeDevice{})

	err := g.InitAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.True(t, armed.armed, "remaining members are still armed after a failure")
}

func TestDMMGroup_ResetAll(t *testing.T) {
	ok := &fakeDMM{}
	failing := &fakeDMM{fakeDevice: fakeDevice{resetErr: errors.New("device gone")}}
	g := newDMMGroup(logger.GetLogger())
	g.add("a", ok)
	g.add("b", failing)

	err := g.ResetAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
	assert.Equal(t, []string{"*RST"}, ok.writes)
}

func TestDMMGroup_SetLocalAll(t *testing.T) {
	g := newDMMGroup(logger.GetLogger())
	g.add("a", &fakeDMM{})
	g.add("b", &fakeDMM{fakeDevice: fakeDevice{localErr: errors.New("no controller")}})

	err := g.SetLocalAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestDMMGroup_Empty(t *testing.T) {
	g := newDMMGroup(logger.GetLogger())

	assert.Zero(t, g.Len())
	got, err := g.FetchAll(nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, g.InitAll())
	assert.NoError(t, g.ResetAll())
}
