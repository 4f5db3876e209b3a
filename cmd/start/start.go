package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/strontium-cloud/strontium/api"
	"github.com/strontium-cloud/strontium/internal/launcher"
	"github.com/strontium-cloud/strontium/internal/metrics"
	"github.com/strontium-cloud/strontium/internal/schedule"
	"github.com/strontium-cloud/strontium/internal/worker"
	"github.com/strontium-cloud/strontium/pkg/db"
	"github.com/strontium-cloud/strontium/pkg/env"
	"github.com/strontium-cloud/strontium/pkg/log"
)

const (
	usage   = "start"
	short   = "Start a strontium scheduling instance"
	long    = "This command starts the strontium API with an embedded schedule worker"
	example = "strontium start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "run", "begin"},
		Example:    example,
		RunE:       start,
	}
)

var cancel context.CancelFunc

func start(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info("gracefully shutting down", "signal", s.String())
				shutdown()
				os.Exit(0)
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc

	log.Info("migrating database")
	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failure", "error", err)
	}

	metrics.Register()

	errs := make(chan error)

	go func() {
		log.Info("spinning up api")
		errs <- api.Start()
	}()

	go func() {
		log.Info("launching schedule worker")
		errs <- newWorker().Run(ctx)
	}()

	defer shutdown()

	return <-errs
}

func newWorker() *worker.Worker {
	vars := env.Variables()
	store := schedule.NewStore(db.Connection())

	proc := launcher.NewProcessLauncher(
		vars.RunnerCommand,
		vars.ExecutionTimeout,
		vars.OutputExcerptBytes,
		vars.ArtifactsDir,
	)

	return worker.New(
		vars.WorkerID,
		store,
		worker.NewPool(vars.MaxConcurrentExecutions),
		vars.PollInterval,
		vars.ClaimGrace(),
		worker.NewExecutor(store, proc),
	)
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
}
