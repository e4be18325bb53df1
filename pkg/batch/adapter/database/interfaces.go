// Package database defines the database adapter interfaces used to store and export tables.
package database

import (
	"context"

	"gorm.io/gorm"

	dbconfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/config"
	coreAdapter "github.com/Yognotiano/TESIS/pkg/batch/core/adapter"
)

// DBConnection is a named, open database.
type DBConnection interface {
	coreAdapter.ResourceConnection
	// DB returns the gorm handle bound to this connection.
	DB() *gorm.DB
	// Config returns the settings the connection was opened with.
	Config() dbconfig.DatabaseConfig
}

// DBProvider opens and caches connections of one database type.
type DBProvider interface {
	GetConnection(name string) (DBConnection, error)
	CloseAll() error
	Type() string
}

// DBConnectionResolver picks the provider for a named connection.
type DBConnectionResolver interface {
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProviderGroup is the fx value group database providers are collected into.
const DBProviderGroup = `group:"db_providers"`
