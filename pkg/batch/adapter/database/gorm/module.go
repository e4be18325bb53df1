package gorm

import (
	"go.uber.org/fx"
)

// Module provides the database connection resolver. Concrete providers come from the dialect packages.
var Module = fx.Options(
	fx.Provide(NewGormDBConnectionResolverFromParams),
)
