package postgres

import (
	"go.uber.org/fx"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
)

// Module contributes the PostgreSQL provider to the db_providers group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewProvider,
		fx.ResultTags(database.DBProviderGroup),
	)),
)
