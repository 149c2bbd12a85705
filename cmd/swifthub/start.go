package main

import (
	"swifthub/internal/adapters/telemetry"
	"swifthub/internal/core/session"
	"swifthub/internal/platform/logger"
	"swifthub/internal/services/navigator"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func startCmd(d *deps) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Present the home screen and follow credential changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			sink, closeSink := telemetry.Open(ctx, telemetry.LoadConfig(d.cfg))
			defer func() {
				if err := closeSink(); err != nil {
					logger.Get().Warn().Err(err).Msg("telemetry close failed")
				}
			}()

			loop := session.NewLoop()
			defer loop.Stop()
			console := navigator.NewConsole(cmd.OutOrStdout())

			app := session.New(session.Deps{
				Selector:     d.selector,
				Env:          d.env,
				Credentials:  d.store,
				Users:        d.store,
				Navigator:    console,
				Telemetry:    sink,
				Dispatcher:   loop,
				StartupDelay: d.session.StartupDelay,
				Banners:      d.session.BannersEnabled,
			})
			defer app.Close()
			log := logger.C(app.Context())
			log.Info().Str("auth_file", d.store.Path()).Bool("staging", d.env.Staging).Msg("session starting")

			// stdin reads cannot be interrupted, so the reader stays outside the group
			go serveCommands(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), app, console)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return app.WatchCredentials(gctx, d.store) })
			g.Go(func() error {
				if user != "" {
					app.UpdateProvider()
					app.PresentTestScreen(console, user)
				} else {
					app.PresentInitialScreen(console)
				}
				console.Wait(gctx)
				return nil
			})
			if err := g.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			log.Info().Msg("session stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "show this user's repositories instead of the home screen")
	return cmd
}

