package gorm

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

func TestGormWriter_RoutesByStatement(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLogLevel("DEBUG")
	t.Cleanup(func() {
		logger.SetLogLevel("INFO")
		logger.SetOutput(os.Stderr)
	})

	w := NewGormWriter()
	w.Printf("[%.3fms] %s", 1.5, "INSERT INTO temps VALUES (1)")
	w.Printf("record not found")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] [GORM] [1.500ms] INSERT INTO temps")
	assert.Contains(t, out, "[INFO] [GORM] record not found")
}

func TestGormLevelFor(t *testing.T) {
	assert.Equal(t, "info", gormLevelFor(logger.LevelDebug))
	assert.Equal(t, "warn", gormLevelFor(logger.LevelInfo))
	assert.Equal(t, "error", gormLevelFor(logger.LevelError))
}
