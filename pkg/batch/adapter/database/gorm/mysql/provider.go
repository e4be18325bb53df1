// Package mysql registers the MySQL dialect and provides its DBProvider.
package mysql

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
)

// ProviderType is the database type handled here.
const ProviderType = "mysql"

func init() {
	gormadapter.RegisterDialector(ProviderType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString builds a go-sql-driver DSN from c.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	mc := gomysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, port)
	mc.DBName = c.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}

// NewProvider creates the MySQL DBProvider.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewBaseProvider(cfg, ProviderType)
}
