package usecase

import (
	"go.uber.org/fx"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
)

// Module provides the SimpleJobLauncher as the port.JobLauncher.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewSimpleJobLauncher,
		fx.As(new(port.JobLauncher)),
	)),
)
