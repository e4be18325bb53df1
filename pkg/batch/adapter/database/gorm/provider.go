// Package gorm implements the database adapter interfaces with gorm.
package gorm

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// DialectorFactory builds a gorm.Dialector from a DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory returns the DialectorFactory registered for dbType.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// Open opens a gorm handle for cfg, applying pool settings.
// The dialect package for cfg.Type must have been imported so its init has registered it.
func Open(cfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
	factory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", cfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(gormLevelFor(logger.GetLogLevel())),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection (%s): %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// BaseProvider caches named connections of one database type.
type BaseProvider struct {
	cfg         *config.Config
	dbType      string
	connections map[string]database.DBConnection
	mu          sync.RWMutex
}

// NewBaseProvider creates a new BaseProvider.
func NewBaseProvider(cfg *config.Config, dbType string) *BaseProvider {
	return &BaseProvider{
		cfg:         cfg,
		dbType:      dbType,
		connections: make(map[string]database.DBConnection),
	}
}

func (p *BaseProvider) Type() string {
	return p.dbType
}

// GetConnection returns the cached connection for name, opening it on first use.
func (p *BaseProvider) GetConnection(name string) (database.DBConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}
	return p.createAndStoreConnection(name)
}

func (p *BaseProvider) createAndStoreConnection(name string) (database.DBConnection, error) {
	var dbCfg dbconfig.DatabaseConfig
	if err := p.cfg.DecodeAdapterConfig("database", name, &dbCfg); err != nil {
		return nil, err
	}
	if dbCfg.Type != p.dbType {
		return nil, fmt.Errorf("provider type mismatch: expected '%s', got '%s' for connection '%s'", p.dbType, dbCfg.Type, name)
	}

	db, err := Open(dbCfg)
	if err != nil {
		return nil, err
	}
	conn, err := NewGormDBAdapter(db, dbCfg, name)
	if err != nil {
		return nil, err
	}
	p.connections[name] = conn
	logger.Infof("Established new DB connection: %s (%s)", name, p.dbType)
	return conn, nil
}

// ForceReconnect closes the cached connection for name, if any, and opens a fresh one.
func (p *BaseProvider) ForceReconnect(name string) (database.DBConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.connections[name]; ok {
		if err := existing.Close(); err != nil {
			logger.Warnf("Failed to close existing connection '%s' before reconnect: %v", name, err)
		}
		delete(p.connections, name)
	}
	return p.createAndStoreConnection(name)
}

// CloseAll closes every connection opened by this provider.
func (p *BaseProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		delete(p.connections, name)
	}
	return result
}
