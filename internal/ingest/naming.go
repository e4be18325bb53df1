package ingest

import (
	"regexp"
)

// Auto is the override value that requests an automatic output name.
const Auto = "auto"

var datePrefix = regexp.MustCompile(`^([0-9]{8})`)

// DateSpan returns the smallest and largest YYYYMMDD basename prefix among files.
// Both are empty when no basename starts with eight digits.
func DateSpan(files []string) (dmin, dmax string) {
	for _, f := range files {
		m := datePrefix.FindStringSubmatch(basename(f))
		if m == nil {
			continue
		}
		d := m[1]
		if dmin == "" || d < dmin {
			dmin = d
		}
		if dmax == "" || d > dmax {
			dmax = d
		}
	}
	return dmin, dmax
}

// ChooseOutputName picks the artifact file name. A non-empty override other than "auto"
// contributes only its basename.
func ChooseOutputName(files []string, override string) string {
	if override != "" && override != Auto {
		return basename(override)
	}
	dmin, dmax := DateSpan(files)
	switch {
	case dmin == "":
		return "temps.root"
	case dmin == dmax:
		return "temps_" + dmin + ".root"
	default:
		return "temps_" + dmin + "_" + dmax + ".root"
	}
}
