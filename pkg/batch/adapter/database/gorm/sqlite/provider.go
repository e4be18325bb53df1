// Package sqlite registers the SQLite dialect and provides its DBProvider.
package sqlite

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ProviderType is the database type handled here.
const ProviderType = "sqlite"

func init() {
	gormadapter.RegisterDialector(ProviderType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		path, err := config.NewOsEnvironmentExpander().ExpandPath(cfg.Database)
		if err != nil {
			return nil, err
		}
		cfg.Database = path
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns the DSN for a SQLite file.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return "file:" + c.Database + "?_busy_timeout=5000"
}

// LibVersion reports the linked SQLite library version.
func LibVersion() string {
	v, _, _ := sqlite3.Version()
	return v
}

// NewProvider creates the SQLite DBProvider.
func NewProvider(cfg *config.Config) database.DBProvider {
	logger.Debugf("SQLite provider using libsqlite3 %s.", LibVersion())
	return gormadapter.NewBaseProvider(cfg, ProviderType)
}
