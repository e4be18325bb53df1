// Package postgres registers the PostgreSQL dialect and provides its DBProvider.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
)

// ProviderType is the database type handled here.
const ProviderType = "postgres"

func init() {
	gormadapter.RegisterDialector(ProviderType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString builds a key/value DSN as expected by pgx.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslmode)
}

// NewProvider creates the PostgreSQL DBProvider.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewBaseProvider(cfg, ProviderType)
}
