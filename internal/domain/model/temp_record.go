package model

import "math"

// TempRecord is the relational form of TempRow. SQL engines store NaN as NULL,
// so sensor slots are nullable and NULL reads back as NaN.
type TempRecord struct {
	ID     uint  `gorm:"column:id;primaryKey;autoIncrement"`
	Year   int32 `gorm:"column:year"`
	Month  int32 `gorm:"column:month"`
	Day    int32 `gorm:"column:day"`
	Hour   int32 `gorm:"column:hour"`
	Minute int32 `gorm:"column:minute"`
	Second int32 `gorm:"column:second"`
	Tsec   int32 `gorm:"column:tsec"`
	FileID int32 `gorm:"column:file_id;index"`

	S1  *float32 `gorm:"column:S1"`
	S2  *float32 `gorm:"column:S2"`
	S3  *float32 `gorm:"column:S3"`
	S4  *float32 `gorm:"column:S4"`
	S5  *float32 `gorm:"column:S5"`
	S6  *float32 `gorm:"column:S6"`
	S7  *float32 `gorm:"column:S7"`
	S8  *float32 `gorm:"column:S8"`
	S9  *float32 `gorm:"column:S9"`
	S10 *float32 `gorm:"column:S10"`
	S11 *float32 `gorm:"column:S11"`
	S12 *float32 `gorm:"column:S12"`
	S13 *float32 `gorm:"column:S13"`
	S14 *float32 `gorm:"column:S14"`
	S15 *float32 `gorm:"column:S15"`
	S16 *float32 `gorm:"column:S16"`
	S17 *float32 `gorm:"column:S17"`
	S18 *float32 `gorm:"column:S18"`
	S19 *float32 `gorm:"column:S19"`
}

func (TempRecord) TableName() string { return TempsTable }

func (t *TempRecord) sensorPtrs() [NumSensors]**float32 {
	return [NumSensors]**float32{
		&t.S1, &t.S2, &t.S3, &t.S4, &t.S5, &t.S6, &t.S7, &t.S8, &t.S9, &t.S10,
		&t.S11, &t.S12, &t.S13, &t.S14, &t.S15, &t.S16, &t.S17, &t.S18, &t.S19,
	}
}

// NewTempRecord converts a row for relational storage.
func NewTempRecord(r TempRow) TempRecord {
	t := TempRecord{
		Year: r.Year, Month: r.Month, Day: r.Day,
		Hour: r.Hour, Minute: r.Minute, Second: r.Second,
		Tsec: r.Tsec, FileID: r.FileID,
	}
	for i, p := range t.sensorPtrs() {
		v := r.Sensor(i + 1)
		if math.IsNaN(float64(v)) {
			continue
		}
		*p = &v
	}
	return t
}

// Row converts back, mapping NULL sensors to NaN.
func (t TempRecord) Row() TempRow {
	r := NewTempRow()
	r.Year, r.Month, r.Day = t.Year, t.Month, t.Day
	r.Hour, r.Minute, r.Second = t.Hour, t.Minute, t.Second
	r.Tsec, r.FileID = t.Tsec, t.FileID
	for i, p := range t.sensorPtrs() {
		if *p != nil {
			r.SetSensor(i+1, **p)
		}
	}
	return r
}
