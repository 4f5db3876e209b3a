package worker

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/strontium-cloud/strontium/internal/launcher"
	"github.com/strontium-cloud/strontium/internal/metrics"
	"github.com/strontium-cloud/strontium/internal/schedule"
	"github.com/strontium-cloud/strontium/internal/worker"
	"github.com/strontium-cloud/strontium/pkg/db"
	"github.com/strontium-cloud/strontium/pkg/env"
	"github.com/strontium-cloud/strontium/pkg/log"
)

const (
	usage   = "worker"
	short   = "Start a standalone strontium worker"
	long    = "This command starts a poll-only worker process with no API, for scaling execution capacity against a shared database"
	example = "strontium worker"
)

var (
	// Cmd is the worker command.
	Cmd = &cobra.Command{
		Use:     usage,
		Short:   short,
		Long:    long,
		Aliases: []string{"w"},
		Example: example,
		RunE:    run,
	}
)

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Workers never migrate; the API instance owns the schema so
	// concurrent workers cannot race DDL against each other.
	metrics.Register()

	vars := env.Variables()
	store := schedule.NewStore(db.Connection())

	proc := launcher.NewProcessLauncher(
		vars.RunnerCommand,
		vars.ExecutionTimeout,
		vars.OutputExcerptBytes,
		vars.ArtifactsDir,
	)

	w := worker.New(
		vars.WorkerID,
		store,
		worker.NewPool(vars.MaxConcurrentExecutions),
		vars.PollInterval,
		vars.ClaimGrace(),
		worker.NewExecutor(store, proc),
	)

	log.Info("standalone worker starting", "worker_id", w.ID())

	err := w.Run(ctx)
	if err == nil {
		log.Info("worker drained and stopped", "worker_id", w.ID())
	}

	return err
}
