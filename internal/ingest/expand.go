package ingest

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ExpandInputs turns a comma separated list of paths and shell globs into file paths.
// Glob matches are appended sorted; literal paths are kept as given without checking that
// they exist. Duplicates are kept. An empty result fails with exception.ErrNoInputs.
func ExpandInputs(pattern string) ([]string, error) {
	var files []string
	for _, tok := range splitList(pattern) {
		if !hasGlobMeta(tok) {
			files = append(files, tok)
			continue
		}
		matches, err := filepath.Glob(tok)
		if err != nil {
			logger.Warnf("Bad glob pattern '%s': %v", tok, err)
			continue
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, exception.NewFatal("ingest", exception.ErrNoInputs,
			fmt.Sprintf("no input files match '%s'", pattern), nil)
	}
	return files, nil
}
