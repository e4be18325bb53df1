package local

import (
	"go.uber.org/fx"

	storageAdapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
)

// Module contributes the local provider to the storage provider group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.ResultTags(storageAdapter.ProviderGroup),
	)),
)
