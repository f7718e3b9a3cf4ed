// Command tlegen turns a constellation's orbital rows into NORAD two-line
// element sets, one TLEs_<system>.txt file per run.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/tle-generator/internal/config"
	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/internal/observability"
)

const tracerName = "github.com/signalsfoundry/tle-generator/cmd/tlegen"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := newApp()
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app carries state resolved once per invocation by the root command.
type app struct {
	v          *viper.Viper
	configFile string

	cfg      config.Config
	log      logging.Logger
	shutdown func(context.Context) error
}

func newApp() *app {
	return &app{v: config.New(), log: logging.Noop()}
}

// close flushes spans recorded during the run, including failed runs.
func (a *app) close() {
	observability.ShutdownWithTimeout(context.Background(), a.shutdown, a.log)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tlegen",
		Short:         "Generate NORAD two-line element sets for a satellite constellation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "optional YAML, TOML or JSON config file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	bindFlags(a.v, flags, map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	root.AddCommand(newGenerateCmd(a), newVerifyCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		logging.New(logging.Config{}).Error(cmd.Context(), "failed to load configuration", logging.Err(err))
		return err
	}
	a.cfg = cfg

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	a.log = logging.New(logCfg)

	tracing := cfg.Tracing
	tracing.Output = cmd.ErrOrStderr()
	shutdown, err := observability.InitTracing(cmd.Context(), tracing, a.log)
	if err != nil {
		a.log.Error(cmd.Context(), "failed to initialise tracing", logging.Err(err))
		return err
	}
	a.shutdown = shutdown
	return nil
}
