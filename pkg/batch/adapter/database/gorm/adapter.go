package gorm

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// NewGormLogger creates a gorm logger that writes through the application logger.
// level is one of "silent", "error", "warn" or "info"; anything else is silent.
func NewGormLogger(level string) gormlogger.Interface {
	var gormLevel gormlogger.LogLevel
	switch strings.ToLower(level) {
	case "error":
		gormLevel = gormlogger.Error
	case "warn":
		gormLevel = gormlogger.Warn
	case "info":
		gormLevel = gormlogger.Info
	default:
		gormLevel = gormlogger.Silent
	}
	return gormlogger.New(NewGormWriter(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// gormLevelFor maps the application log level onto the gorm one.
func gormLevelFor(l logger.LogLevel) string {
	switch l {
	case logger.LevelDebug:
		return "info"
	case logger.LevelInfo, logger.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// GormWriter redirects gorm output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements gormlogger.Writer. Statement traces go to DEBUG, everything else to INFO.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if isStatementTrace(msg) {
		logger.Debugf("[GORM] %s", msg)
		return
	}
	logger.Infof("[GORM] %s", msg)
}

func isStatementTrace(msg string) bool {
	if !strings.Contains(msg, "[") || !strings.Contains(msg, "]") {
		return false
	}
	upper := strings.ToUpper(msg)
	for _, kw := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// GormDBAdapter implements database.DBConnection on top of a *gorm.DB.
type GormDBAdapter struct {
	db    *gorm.DB
	sqlDB *sql.DB
	cfg   dbconfig.DatabaseConfig
	name  string
}

var _ database.DBConnection = (*GormDBAdapter)(nil)

// NewGormDBAdapter wraps an open gorm handle.
func NewGormDBAdapter(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) (*GormDBAdapter, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB for '%s': %w", name, err)
	}
	return &GormDBAdapter{db: db, sqlDB: sqlDB, cfg: cfg, name: name}, nil
}

func (a *GormDBAdapter) DB() *gorm.DB                    { return a.db }
func (a *GormDBAdapter) Config() dbconfig.DatabaseConfig { return a.cfg }
func (a *GormDBAdapter) Type() string                    { return a.cfg.Type }
func (a *GormDBAdapter) Name() string                    { return a.name }

// Close closes the underlying connection pool.
func (a *GormDBAdapter) Close() error {
	if err := a.sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection '%s': %w", a.name, err)
	}
	logger.Debugf("Closed database connection '%s' (%s).", a.name, a.cfg.Type)
	return nil
}

// SQLDB exposes the pool, mostly for health checks.
func (a *GormDBAdapter) SQLDB() *sql.DB { return a.sqlDB }
