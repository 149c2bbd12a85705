package main

import (
	"swifthub/internal/adapters/stub"
	"swifthub/internal/platform/logger"

	"github.com/spf13/cobra"
)

func stubCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stub",
		Short: "Serve the staging backend over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			o := stub.LoadOptions(d.cfg)
			srv, err := stub.NewServer(o)
			if err != nil {
				return err
			}
			logger.Named("stub").Info().Str("addr", srv.Addr()).Msg("staging backend listening")
			return srv.Run(ctx)
		},
	}
}
