package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"swifthub/internal/adapters/authfile"
	"swifthub/internal/adapters/stub"
	"swifthub/internal/core/provider"
	"swifthub/internal/core/session"
	"swifthub/internal/core/version"
	"swifthub/internal/platform/config"

	"github.com/spf13/cobra"
)

// deps is built once before any subcommand runs
type deps struct {
	cfg      config.Conf
	env      provider.Environment
	session  session.Config
	selector provider.Selector
	store    *authfile.File
}

func newRootCmd() *cobra.Command {
	var (
		d        deps
		authFile string
		staging  bool
	)
	root := &cobra.Command{
		Use:           "swifthub",
		Short:         "GitHub client core",
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			d.cfg = config.New().Prefix("SWIFTHUB_")
			d.env = provider.LoadEnvironment(d.cfg)
			if cmd.Flags().Changed("staging") {
				d.env.Staging = staging
			}
			d.session = session.LoadConfig(d.cfg)
			if authFile != "" {
				d.session.AuthFile = authFile
			}
			d.selector = provider.Selector{Staging: stub.Transport()}

			st, err := authfile.Open(d.session.AuthFile)
			if err != nil {
				return err
			}
			d.store = st
			return nil
		},
	}
	root.PersistentFlags().StringVar(&authFile, "auth-file", "", "credential file (default ~/.swifthub/credentials.yaml)")
	root.PersistentFlags().BoolVar(&staging, "staging", false, "use the in-process staging backend")

	root.AddCommand(
		startCmd(&d),
		stubCmd(&d),
		loginCmd(&d),
		logoutCmd(&d),
		whoamiCmd(&d),
	)
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
