package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTempRow_AllSensorsNaN(t *testing.T) {
	r := NewTempRow()
	for i := 1; i <= NumSensors; i++ {
		assert.True(t, math.IsNaN(float64(r.Sensor(i))), "S%d", i)
	}
}

func TestSetSensor_Bounds(t *testing.T) {
	r := NewTempRow()
	assert.True(t, r.SetSensor(5, 21.3))
	assert.True(t, r.SetSensor(19, -1.25))
	assert.False(t, r.SetSensor(0, 1))
	assert.False(t, r.SetSensor(20, 1))

	assert.Equal(t, float32(21.3), r.S5)
	assert.Equal(t, float32(-1.25), r.S19)
	assert.Panics(t, func() { r.Sensor(20) })
}

func TestSetClock(t *testing.T) {
	var r TempRow
	r.SetClock(15, 22, 22)
	assert.Equal(t, int32(55342), r.Tsec)
	assert.InDelta(t, 15.372777, r.HourF(), 1e-5)

	r.Year, r.Month, r.Day = 2025, 8, 19
	assert.Equal(t, int64(20250819), r.YMD())
}

func TestTempRecord_RoundTripKeepsNaN(t *testing.T) {
	r := NewTempRow()
	r.Year, r.Month, r.Day, r.FileID = 2025, 8, 20, 3
	r.SetClock(7, 0, 0)
	r.SetSensor(2, 21.0)

	rec := NewTempRecord(r)
	require.NotNil(t, rec.S2)
	assert.Nil(t, rec.S1)
	assert.Equal(t, float32(21.0), *rec.S2)

	back := rec.Row()
	assert.Equal(t, r.Tsec, back.Tsec)
	assert.Equal(t, int32(3), back.FileID)
	assert.Equal(t, float32(21.0), back.S2)
	assert.True(t, math.IsNaN(float64(back.S1)))
	assert.True(t, math.IsNaN(float64(back.S19)))
}

func TestSideTables(t *testing.T) {
	var s SideTables
	s.AddFile(0, "20250819_x.TXT")
	s.AddFile(1, "missing.TXT")
	s.AddHeader(0, HeaderRecord{Inicio: "2025-08-19 15:22:22", DuracionMin: 60})

	p, ok := s.FilePath(1)
	assert.True(t, ok)
	assert.Equal(t, "missing.TXT", p)
	assert.Equal(t, []int32{0, 1}, s.FileIDs())

	h, ok := s.Header(0)
	require.True(t, ok)
	assert.Equal(t, "2025-08-19 15:22:22", h.Inicio)
	assert.Equal(t, int64(60), h.DuracionMin)

	_, ok = s.Header(1)
	assert.False(t, ok)

	require.Len(t, s.Meta, 2)
	assert.Equal(t, "Inicio_0", s.Meta[0].Key)
	assert.Equal(t, "Duracion_min_0", s.Meta[1].Key)
}
