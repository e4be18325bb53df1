package storage

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	coreConfig "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// ConnectionResolver dispatches a connection name to the provider registered for its configured type.
type ConnectionResolver struct {
	providers map[string]StorageProvider
	cfg       *coreConfig.Config
}

// ResolverParams collects every storage provider contributed to the fx graph.
type ResolverParams struct {
	fx.In
	Config    *coreConfig.Config
	Providers []StorageProvider `group:"storage_providers"`
}

// NewConnectionResolver creates a resolver over the given providers.
func NewConnectionResolver(cfg *coreConfig.Config, providers ...StorageProvider) *ConnectionResolver {
	byType := make(map[string]StorageProvider, len(providers))
	for _, p := range providers {
		byType[p.Type()] = p
	}
	return &ConnectionResolver{providers: byType, cfg: cfg}
}

// NewConnectionResolverFromParams is the fx constructor for ConnectionResolver.
func NewConnectionResolverFromParams(p ResolverParams) StorageConnectionResolver {
	return NewConnectionResolver(p.Config, p.Providers...)
}

// ResolveStorageConnection looks up adapter.storage.<name>, then asks the matching provider for it.
func (r *ConnectionResolver) ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error) {
	var sc storageConfig.StorageConfig
	if err := r.cfg.DecodeAdapterConfig("storage", name, &sc); err != nil {
		return nil, err
	}
	provider, ok := r.providers[sc.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", sc.Type, name)
	}
	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage connection '%s' from provider '%s': %w", name, sc.Type, err)
	}
	logger.Debugf("Resolved storage connection '%s' (%s).", name, sc.Type)
	return conn, nil
}

// CloseAll closes every provider's connections.
func (r *ConnectionResolver) CloseAll() error {
	var firstErr error
	for t, p := range r.providers {
		if err := p.CloseAll(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close '%s' storage connections: %w", t, err)
		}
	}
	return firstErr
}

// Module provides the storage connection resolver. Providers join through ProviderGroup.
var Module = fx.Options(
	fx.Provide(NewConnectionResolverFromParams),
)
