// Package model holds the thermometer log records produced by ingestion.
package model

import (
	"fmt"
	"math"
)

// NumSensors is the number of fixed sensor slots S1..S19.
const NumSensors = 19

// TempRow is one row of the temps table. Sensor slots absent from the source line are NaN.
type TempRow struct {
	Year   int32 `parquet:"name=year, type=INT32, convertedtype=UINT_32"`
	Month  int32 `parquet:"name=month, type=INT32, convertedtype=UINT_32"`
	Day    int32 `parquet:"name=day, type=INT32, convertedtype=UINT_32"`
	Hour   int32 `parquet:"name=hour, type=INT32, convertedtype=UINT_32"`
	Minute int32 `parquet:"name=minute, type=INT32, convertedtype=UINT_32"`
	Second int32 `parquet:"name=second, type=INT32, convertedtype=UINT_32"`
	Tsec   int32 `parquet:"name=tsec, type=INT32, convertedtype=UINT_32"`
	FileID int32 `parquet:"name=file_id, type=INT32"`

	S1  float32 `parquet:"name=S1, type=FLOAT"`
	S2  float32 `parquet:"name=S2, type=FLOAT"`
	S3  float32 `parquet:"name=S3, type=FLOAT"`
	S4  float32 `parquet:"name=S4, type=FLOAT"`
	S5  float32 `parquet:"name=S5, type=FLOAT"`
	S6  float32 `parquet:"name=S6, type=FLOAT"`
	S7  float32 `parquet:"name=S7, type=FLOAT"`
	S8  float32 `parquet:"name=S8, type=FLOAT"`
	S9  float32 `parquet:"name=S9, type=FLOAT"`
	S10 float32 `parquet:"name=S10, type=FLOAT"`
	S11 float32 `parquet:"name=S11, type=FLOAT"`
	S12 float32 `parquet:"name=S12, type=FLOAT"`
	S13 float32 `parquet:"name=S13, type=FLOAT"`
	S14 float32 `parquet:"name=S14, type=FLOAT"`
	S15 float32 `parquet:"name=S15, type=FLOAT"`
	S16 float32 `parquet:"name=S16, type=FLOAT"`
	S17 float32 `parquet:"name=S17, type=FLOAT"`
	S18 float32 `parquet:"name=S18, type=FLOAT"`
	S19 float32 `parquet:"name=S19, type=FLOAT"`
}

// NewTempRow returns a row with every sensor slot set to NaN.
func NewTempRow() TempRow {
	var r TempRow
	nan := float32(math.NaN())
	for _, p := range r.sensorPtrs() {
		*p = nan
	}
	return r
}

func (r *TempRow) sensorPtrs() [NumSensors]*float32 {
	return [NumSensors]*float32{
		&r.S1, &r.S2, &r.S3, &r.S4, &r.S5, &r.S6, &r.S7, &r.S8, &r.S9, &r.S10,
		&r.S11, &r.S12, &r.S13, &r.S14, &r.S15, &r.S16, &r.S17, &r.S18, &r.S19,
	}
}

// Sensor returns slot i (1-based). It panics when i is outside [1, NumSensors].
func (r *TempRow) Sensor(i int) float32 {
	if i < 1 || i > NumSensors {
		panic(fmt.Sprintf("sensor index %d out of range", i))
	}
	return *r.sensorPtrs()[i-1]
}

// SetSensor assigns slot i (1-based) and reports whether i was in range.
func (r *TempRow) SetSensor(i int, v float32) bool {
	if i < 1 || i > NumSensors {
		return false
	}
	*r.sensorPtrs()[i-1] = v
	return true
}

// SetClock fills the time-of-day fields and tsec.
func (r *TempRow) SetClock(h, m, s uint32) {
	r.Hour, r.Minute, r.Second = int32(h), int32(m), int32(s)
	r.Tsec = int32(h*3600 + m*60 + s)
}

// YMD is the packed year*10000 + month*100 + day.
func (r *TempRow) YMD() int64 {
	return int64(r.Year)*10000 + int64(r.Month)*100 + int64(r.Day)
}

// HourF is the fractional hour of day.
func (r *TempRow) HourF() float64 {
	return float64(r.Hour) + float64(r.Minute)/60.0 + float64(r.Second)/3600.0
}

// SensorName is the column name for slot i.
func SensorName(i int) string {
	return fmt.Sprintf("S%d", i)
}
