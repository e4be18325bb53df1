// Package app assembles the fx application that runs one thermolog job.
package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database"
	gormadapter "github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm/mysql"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm/postgres"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/gcs"
	"github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/local"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/usecase"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/repository"
	"github.com/Yognotiano/TESIS/pkg/batch/core/job"
	"github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/engine/step/tasklet"
	infraMetrics "github.com/Yognotiano/TESIS/pkg/batch/infrastructure/metrics"
	"github.com/Yognotiano/TESIS/pkg/batch/infrastructure/repository/inmemory"
	"github.com/Yognotiano/TESIS/pkg/batch/listener/logging"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// Deps are the collaborators a job definition may use.
type Deps struct {
	fx.In

	Config        *config.Config
	Ingest        *config.IngestConfig
	Expander      config.EnvironmentExpander
	Recorder      metrics.MetricRecorder
	Tracer        metrics.Tracer
	Repository    repository.JobRepository
	Storage       storage.StorageConnectionResolver
	Databases     database.DBConnectionResolver
	StepListeners []port.StepExecutionListener `group:"step_listeners"`
}

// Definition describes the single-step job of one command.
type Definition struct {
	JobName  string
	StepName string
	// Tasklet builds the step's work from the application's collaborators.
	Tasklet func(d Deps) (port.Tasklet, error)
}

// Step wraps t in a TaskletStep bound to the application's repository, listeners and telemetry.
func (d Deps) Step(name string, t port.Tasklet) port.Step {
	return tasklet.NewTaskletStep(name, t, d.Repository, d.StepListeners, d.Recorder, d.Tracer)
}

// Modules lists every fx module of the application. extra is appended, which lets tests
// replace providers.
func Modules(cfg *config.Config, extra ...fx.Option) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		logger.Module,
		config.Module,
		infraMetrics.Module,
		inmemory.Module,
		usecase.Module,
		logging.Module,
		storage.Module,
		local.Module,
		gcs.Module,
		gormadapter.Module,
		sqlite.Module,
		mysql.Module,
		postgres.Module,
		fx.Options(extra...),
	)
}

// Run starts the application, launches the job described by def and stops the application.
// The returned JobExecution carries the step counters and ExecutionContext; it is nil only
// when the application could not be started.
func Run(ctx context.Context, cfg *config.Config, def Definition, extra ...fx.Option) (*model.JobExecution, error) {
	var (
		deps     Deps
		launcher port.JobLauncher
	)
	application := fx.New(
		Modules(cfg, extra...),
		fx.Populate(&deps, &launcher),
		fx.Invoke(closeConnectionsOnStop),
	)
	if err := application.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	if err := application.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start application: %w", err)
	}
	defer func() {
		if err := application.Stop(context.Background()); err != nil {
			logger.Errorf("Failed to stop application: %v", err)
		}
	}()

	t, err := def.Tasklet(deps)
	if err != nil {
		return nil, err
	}
	j := job.NewSimpleJob(def.JobName, deps.Step(def.StepName, t))
	return launcher.Launch(ctx, j, model.NewJobParameters())
}

type closer interface{ CloseAll() error }

func closeConnectionsOnStop(lc fx.Lifecycle, s storage.StorageConnectionResolver, d database.DBConnectionResolver) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			for _, r := range []interface{}{s, d} {
				if c, ok := r.(closer); ok {
					if err := c.CloseAll(); err != nil {
						logger.Warnf("Closing connections failed: %v", err)
					}
				}
			}
			return nil
		},
	})
}
