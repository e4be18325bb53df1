// Package selection cuts a time window out of a temps table and projects it for plotting.
package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Yognotiano/TESIS/internal/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// AllFiles disables the file_id filter.
const AllFiles = -1

// ParseTimestamp reads "YYYY-MM-DD HH:MM:SS" into the packed date and the second of day.
// Fields may carry a sign and leading blanks; anything after the seconds is ignored.
func ParseTimestamp(s string) (ymd, tsec int64, ok bool) {
	var v [6]int64
	rest := s
	for i, sep := range []string{"-", "-", " ", ":", ":", ""} {
		n, tail, good := scanInt(rest)
		if !good {
			return 0, 0, false
		}
		v[i] = n
		rest = tail
		switch sep {
		case "":
		case " ":
			rest = strings.TrimLeft(rest, " \t")
		default:
			if !strings.HasPrefix(rest, sep) {
				return 0, 0, false
			}
			rest = rest[1:]
		}
	}
	return v[0]*10000 + v[1]*100 + v[2], v[3]*3600 + v[4]*60 + v[5], true
}

func scanInt(s string) (int64, string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, s, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}

// Range is a closed [start, end] window over (ymd, tsec), optionally restricted to one file.
type Range struct {
	StartYMD, StartTsec int64
	EndYMD, EndTsec     int64
	// HasEnd is false for an open-ended window.
	HasEnd bool
	// FileID is AllFiles or the only file_id accepted.
	FileID int
}

// NewRange builds a Range. An invalid start fails with ErrInvalidRange; an empty or
// unparseable end leaves the window open to the end of the table.
func NewRange(start, end string, fileID int) (Range, error) {
	ymdS, tsS, ok := ParseTimestamp(start)
	if !ok || strings.TrimSpace(start) == "" {
		return Range{}, exception.NewFatal("selection", exception.ErrInvalidRange,
			fmt.Sprintf("invalid start timestamp %q, want YYYY-MM-DD HH:MM:SS", start), nil)
	}
	r := Range{StartYMD: ymdS, StartTsec: tsS, FileID: fileID}
	if r.FileID < 0 {
		r.FileID = AllFiles
	}
	if end != "" {
		if ymdE, tsE, ok := ParseTimestamp(end); ok {
			r.EndYMD, r.EndTsec, r.HasEnd = ymdE, tsE, true
		} else {
			logger.Warnf("End timestamp %q is not YYYY-MM-DD HH:MM:SS; selecting to the end of the table.", end)
		}
	}
	return r, nil
}

// Match reports whether row falls inside the window.
func (r Range) Match(row *model.TempRow) bool {
	if r.FileID >= 0 && int(row.FileID) != r.FileID {
		return false
	}
	ymd, tsec := row.YMD(), int64(row.Tsec)
	switch {
	case !r.HasEnd:
		return ymd > r.StartYMD || (ymd == r.StartYMD && tsec >= r.StartTsec)
	case r.StartYMD == r.EndYMD:
		return ymd == r.StartYMD && tsec >= r.StartTsec && tsec <= r.EndTsec
	default:
		return (ymd > r.StartYMD && ymd < r.EndYMD) ||
			(ymd == r.StartYMD && tsec >= r.StartTsec) ||
			(ymd == r.EndYMD && tsec <= r.EndTsec)
	}
}

// Cut renders the window as a boolean expression over ymd, tsec and file_id.
func (r Range) Cut() string {
	var base string
	switch {
	case !r.HasEnd:
		base = fmt.Sprintf("(ymd > %d) || (ymd == %d && tsec >= %d)", r.StartYMD, r.StartYMD, r.StartTsec)
	case r.StartYMD == r.EndYMD:
		base = fmt.Sprintf("(ymd == %d && tsec >= %d && tsec <= %d)", r.StartYMD, r.StartTsec, r.EndTsec)
	default:
		base = fmt.Sprintf("(ymd > %d && ymd < %d) || (ymd == %d && tsec >= %d) || (ymd == %d && tsec <= %d)",
			r.StartYMD, r.EndYMD, r.StartYMD, r.StartTsec, r.EndYMD, r.EndTsec)
	}
	if r.FileID >= 0 {
		base = fmt.Sprintf("(file_id == %d) && ( %s )", r.FileID, base)
	}
	return base
}

// Select returns the rows of rows matching r, in table order.
func Select(rows []model.TempRow, r Range) []model.TempRow {
	var out []model.TempRow
	for i := range rows {
		if r.Match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
