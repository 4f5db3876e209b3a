package env

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/strontium-cloud/strontium/pkg/log"
)

var variables = new(Environment)

// Process the environment variables set for strontium.
func Process() error {
	if err := envconfig.Process("strontium", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by strontium.
type Environment struct {
	LogLevel     string `default:"info"`
	Port         int    `default:"8080"`
	DatabaseType string `default:"sqlite"`
	DatabaseDSN  string `default:"host=postgres user=postgres password=postgres dbname=strontium port=5432 sslmode=disable"`
	DBPath       string `default:"strontium.db"`

	// WorkerID overrides the generated worker identity. Leave empty
	// so restarts never collide with stale claims from a previous
	// instance of the same host.
	WorkerID string `default:""`

	PollInterval            time.Duration `default:"5s"`
	MaxConcurrentExecutions int           `default:"4"`

	// ClaimGracePeriod is how old a claim must be before it is
	// considered stale and released back for another worker. Zero
	// means 2x ExecutionTimeout.
	ClaimGracePeriod time.Duration `default:"0s"`
	ExecutionTimeout time.Duration `default:"10m"`

	OutputExcerptBytes int    `default:"4096"`
	RunnerCommand      string `default:"suite-runner"`
	ArtifactsDir       string `default:"artifacts"`
}

// ClaimGrace resolves the effective stale-claim grace period.
func (e Environment) ClaimGrace() time.Duration {
	if e.ClaimGracePeriod > 0 {
		return e.ClaimGracePeriod
	}
	return 2 * e.ExecutionTimeout
}
