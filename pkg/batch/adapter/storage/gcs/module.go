package gcs

import (
	"go.uber.org/fx"

	storageAdapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
)

// Module contributes the GCS provider to the storage provider group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGCSProvider,
		fx.ResultTags(storageAdapter.ProviderGroup),
	)),
)
