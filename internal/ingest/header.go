package ingest

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Yognotiano/TESIS/internal/domain/model"
)

var headerPattern = regexp.MustCompile(`#\s*Inicio:\s*([0-9\-]+\s+[0-9:]+)\s*;\s*Duracion:\s*([0-9]+)`)

type headerState int

const (
	headerAbsent headerState = iota
	headerPresent
	headerMalformed
)

// readHeader consumes the first line of f when it starts with '#'. Otherwise f is rewound
// so that line is read again as data. The returned reader continues where parsing stopped.
func readHeader(f io.ReadSeeker) (*bufio.Reader, model.HeaderRecord, headerState, error) {
	br := bufio.NewReader(f)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, model.HeaderRecord{}, headerAbsent, err
	}

	if !strings.HasPrefix(line, "#") {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, model.HeaderRecord{}, headerAbsent, err
		}
		return bufio.NewReader(f), model.HeaderRecord{}, headerAbsent, nil
	}

	h, ok := parseHeader(line)
	if !ok {
		return br, model.HeaderRecord{}, headerMalformed, nil
	}
	return br, h, headerPresent, nil
}

// parseHeader matches "# Inicio: <date> <time> ; Duracion: <minutes>".
func parseHeader(line string) (model.HeaderRecord, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return model.HeaderRecord{}, false
	}
	dur, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return model.HeaderRecord{}, false
	}
	return model.HeaderRecord{Inicio: m[1], DuracionMin: dur}, true
}
