package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// EnsureOutputDir expands base/sub and creates it when missing. It returns the absolute path.
func EnsureOutputDir(expander config.EnvironmentExpander, base, sub string) (string, error) {
	dir, err := expander.ExpandPath(joinPath(base, sub))
	if err != nil {
		return "", exception.NewFatal("ingest", exception.ErrOutputDirUnavailable,
			fmt.Sprintf("cannot expand output directory '%s'", joinPath(base, sub)), err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", exception.NewFatal("ingest", exception.ErrOutputDirUnavailable,
			fmt.Sprintf("cannot resolve output directory '%s'", dir), err)
	}

	if info, err := os.Stat(abs); err == nil {
		if info.IsDir() {
			return abs, nil
		}
		return "", exception.NewFatal("ingest", exception.ErrOutputDirUnavailable,
			fmt.Sprintf("output directory '%s' is not a directory", abs), nil)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", exception.NewFatal("ingest", exception.ErrOutputDirUnavailable,
			fmt.Sprintf("cannot create output directory '%s'", abs), err)
	}
	logger.Infof("Created output directory %s", abs)
	return abs, nil
}
