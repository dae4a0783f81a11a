// Package app wires the fabricsync CLI: flag handling, logger setup and the
// commands that drive a reconciliation run.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/logging"
)

// App holds the CLI's shared state: version information, parsed global flags
// and the logger every command runs under.
type App struct {
	version string
	commit  string
	date    string

	verbose  bool
	quiet    bool
	logLevel string
	jsonLog  bool

	logger *zerolog.Logger
}

// New creates the application. A .env file in the working directory is loaded
// if present; explicit environment variables win over it.
func New(version, commit, date string) (*App, error) {
	_ = godotenv.Load()
	viper.AutomaticEnv()

	return &App{
		version: version,
		commit:  commit,
		date:    date,
		logger:  logging.Default(),
	}, nil
}

// Version returns the build version.
func (a *App) Version() string {
	return a.version
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// setupLogging applies flag precedence and installs the logger: an explicit
// --log-level wins, then -v and -q shortcuts, then the LOG_LEVEL environment
// default already applied by the logging package.
func (a *App) setupLogging() error {
	level := zerolog.GlobalLevel()
	switch {
	case a.logLevel != "":
		parsed, err := zerolog.ParseLevel(a.logLevel)
		if err != nil {
			return &errors.ConfigError{Value: a.logLevel, Message: "unknown log level", Err: err}
		}
		level = parsed
	case a.verbose && a.quiet:
		fmt.Fprintln(os.Stderr, "warning: both --verbose and --quiet specified, using --quiet")
		level = zerolog.WarnLevel
	case a.verbose:
		level = zerolog.DebugLevel
	case a.quiet:
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if a.jsonLog {
		logger = logging.NewJSON(os.Stderr).Level(level)
	} else {
		logger = logging.NewConsole().Level(level)
	}
	logging.SetDefault(logger)
	a.logger = logging.Default()
	return nil
}

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ExitOnError prints the error and exits non-zero. Configuration errors get a
// distinct exit code so wrapper scripts can tell bad rules from failed runs.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fabricsync: %v\n", err)
	if errors.IsConfigError(err) {
		os.Exit(2)
	}
	os.Exit(1)
}
