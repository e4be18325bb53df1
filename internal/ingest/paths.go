// Package ingest turns thermometer log files into one temps table.
package ingest

import (
	"path/filepath"
	"strings"
)

const asciiSpace = " \t\n\v\f\r"

// trimSpace trims ASCII whitespace only; the logs may carry non-ASCII bytes such as "°".
func trimSpace(s string) string {
	return strings.Trim(s, asciiSpace)
}

// splitList splits a comma separated list, trimming each token and dropping empty ones.
func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = trimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// hasGlobMeta reports whether tok contains any of '*', '?' or '['.
func hasGlobMeta(tok string) bool {
	return strings.ContainsAny(tok, "*?[")
}

// basename returns the last path element. Both separators are accepted so that names
// typed on another system still yield their date prefix.
func basename(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// joinPath joins base and sub, ignoring an empty base.
func joinPath(base, sub string) string {
	if base == "" {
		return sub
	}
	return filepath.Join(base, sub)
}
