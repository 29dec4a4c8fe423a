package commands

import (
	"fmt"

	"github.com/ecairns22/urlwait/internal/config"
	"github.com/ecairns22/urlwait/internal/health"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const longHelp = `urlwait blocks until the host and port named by a connection URL accept
TCP connections, or until TIMEOUT seconds have passed.

SERVICE_URL is a connection URL such as a typical $DATABASE_URL value. When
it has no port, the default port for its scheme is used (see 'urlwait ports').
Both values may come from the environment instead; arguments take precedence:

  URLWAIT_VARNAME  name of the variable holding the URL (default DATABASE_URL)
  URLWAIT_TIMEOUT  seconds to wait (default 15)
  URLWAIT_CONFIG   settings file (default /etc/urlwait/urlwait.conf)

Exits 0 once a connection succeeds and 1 otherwise.`

const examples = `  The following are equivalent:

  urlwait redis://localhost:6379/0 20
  urlwait $CACHE_URL 20
  URLWAIT_VARNAME=CACHE_URL URLWAIT_TIMEOUT=20 urlwait`

// Root returns the root cobra command with all subcommands attached.
func Root() *cobra.Command {
	var (
		configPath string
		verbose    bool
		usage      bool
	)

	cmd := &cobra.Command{
		Use:          "urlwait [SERVICE_URL] [TIMEOUT]",
		Short:        "Block until a service is listening",
		Long:         longHelp,
		Example:      examples,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if usage {
				return cmd.Help()
			}

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			target, err := settings.Resolve(args)
			if err != nil {
				return err
			}

			logger := newLogger(cmd, verbose)
			checker, err := health.NewFromURL(target.URL, target.Timeout, health.WithLogger(logger))
			if err != nil {
				return err
			}

			addr := checker.Address()
			logger.WithFields(logrus.Fields{
				"source":  target.Source,
				"scheme":  addr.Scheme,
				"timeout": target.Timeout,
			}).Debugf("waiting for %s", addr)

			ok, err := checker.Wait(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("could not connect to %s on port %d", addr.Host, addr.Port)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: $URLWAIT_CONFIG or /etc/urlwait/urlwait.conf)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every connection attempt to stderr")
	cmd.Flags().BoolVarP(&usage, "usage", "?", false, "Print usage")
	cmd.Flags().MarkHidden("usage")

	cmd.AddCommand(portsCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadSettings reads the --config file when given, otherwise the default one.
func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newLogger(cmd *cobra.Command, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
