package gorm

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

type reconnector interface {
	ForceReconnect(name string) (database.DBConnection, error)
}

// GormDBConnectionResolver routes a connection name to the provider of its configured type.
type GormDBConnectionResolver struct {
	providers map[string]database.DBProvider
	cfg       *config.Config
}

// ResolverParams collects every provider contributed to the db_providers group.
type ResolverParams struct {
	fx.In
	Providers []database.DBProvider `group:"db_providers"`
	Cfg       *config.Config
}

// NewGormDBConnectionResolver creates a resolver over the given providers.
func NewGormDBConnectionResolver(cfg *config.Config, providers ...database.DBProvider) *GormDBConnectionResolver {
	m := make(map[string]database.DBProvider, len(providers))
	for _, p := range providers {
		m[p.Type()] = p
	}
	return &GormDBConnectionResolver{providers: m, cfg: cfg}
}

// NewGormDBConnectionResolverFromParams is the fx constructor.
func NewGormDBConnectionResolverFromParams(p ResolverParams) database.DBConnectionResolver {
	return NewGormDBConnectionResolver(p.Cfg, p.Providers...)
}

// ResolveDBConnection returns a live connection for name. A connection that fails to ping is reopened once.
func (r *GormDBConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	var dbCfg dbconfig.DatabaseConfig
	if err := r.cfg.DecodeAdapterConfig("database", name, &dbCfg); err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: %w", err)
	}
	provider, ok := r.providers[dbCfg.Type]
	if !ok {
		return nil, fmt.Errorf("DBConnectionResolver: no provider for type '%s' (connection '%s')", dbCfg.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: failed to get connection '%s': %w", name, err)
	}

	sqlDB, err := conn.DB().DB()
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: connection '%s' has no sql.DB: %w", name, err)
	}
	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		rc, ok := provider.(reconnector)
		if !ok {
			return nil, fmt.Errorf("DBConnectionResolver: connection '%s' is invalid: %w", name, pingErr)
		}
		logger.Warnf("DBConnectionResolver: connection '%s' is invalid (%v). Attempting to reconnect.", name, pingErr)
		return rc.ForceReconnect(name)
	}
	return conn, nil
}

// CloseAll closes every provider's connections.
func (r *GormDBConnectionResolver) CloseAll() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.CloseAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
