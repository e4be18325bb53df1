package ingest

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
)

// errIgnored marks blank and comment lines. They are neither rows nor skips.
var errIgnored = errors.New("ignored line")

var sensorPattern = regexp.MustCompile(`S(\d+):\s*([-+]?\d+(?:\.\d+)?)`)

// ParseLine parses "YYYY-MM-DD,HH:MM:SS, <payload>" into a row with FileID left zero.
// Malformed lines return an error matching exception.ErrLineSkip.
func ParseLine(line string) (model.TempRow, error) {
	s := trimSpace(line)
	if s == "" || s[0] == '#' {
		return model.TempRow{}, errIgnored
	}
	if last := s[len(s)-1]; last == '.' || last == ',' {
		s = s[:len(s)-1]
	}

	c1 := strings.IndexByte(s, ',')
	if c1 < 0 {
		return model.TempRow{}, exception.ErrLineSkip
	}
	c2 := strings.IndexByte(s[c1+1:], ',')
	if c2 < 0 {
		return model.TempRow{}, exception.ErrLineSkip
	}
	c2 += c1 + 1

	date, ok := scanUints(s[:c1], '-')
	if !ok {
		return model.TempRow{}, exception.ErrLineSkip
	}
	clock, ok := scanUints(s[c1+1:c2], ':')
	if !ok {
		return model.TempRow{}, exception.ErrLineSkip
	}

	row := model.NewTempRow()
	row.Year, row.Month, row.Day = int32(date[0]), int32(date[1]), int32(date[2])
	row.SetClock(clock[0], clock[1], clock[2])

	for _, m := range sensorPattern.FindAllStringSubmatch(s[c2+1:], -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > model.NumSensors {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 32)
		if err != nil {
			continue
		}
		row.SetSensor(idx, float32(v))
	}
	return row, nil
}

// scanUints reads three unsigned integers separated by sep, like sscanf("%u<sep>%u<sep>%u").
// Leading blanks before each number and an optional '+' are accepted; anything after the
// third number is ignored.
func scanUints(s string, sep byte) ([3]uint32, bool) {
	var out [3]uint32
	pos := 0
	for i := 0; i < 3; i++ {
		if i > 0 {
			if pos >= len(s) || s[pos] != sep {
				return out, false
			}
			pos++
		}
		for pos < len(s) && strings.IndexByte(asciiSpace, s[pos]) >= 0 {
			pos++
		}
		if pos < len(s) && s[pos] == '+' {
			pos++
		}
		start := pos
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			pos++
		}
		if pos == start {
			return out, false
		}
		n, err := strconv.ParseUint(s[start:pos], 10, 32)
		if err != nil {
			return out, false
		}
		out[i] = uint32(n)
	}
	return out, true
}
