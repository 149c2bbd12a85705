package main

import (
	"fmt"

	"swifthub/internal/core/apierr"
	"swifthub/internal/core/viewmodel"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"
	"swifthub/internal/services/login"

	"github.com/spf13/cobra"
)

func loginCmd(d *deps) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a personal access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			strategy := d.selector.Select(d.env, d.store.Current())
			vm := login.New(strategy, login.Deps{
				Env:      d.env,
				Selector: d.selector,
				Writer:   d.store,
				Reevaluate: func() {
					if err := d.store.Reload(); err != nil {
						logger.Named("login").Warn().Err(err).Msg("reload credential failed")
					}
				},
			}, viewmodel.WithContext(ctx))
			defer vm.Close()

			out := cmd.OutOrStdout()
			vm.Bind(vm.ParsedError.Subscribe(func(e apierr.ApiError) {
				fmt.Fprintf(out, "login failed: %s: %s\n", e.Title(), e.Description())
			}))

			vm.SetToken(token)
			user, ok := vm.Login(ctx)
			if !ok {
				return perr.New(perr.ErrorCodeUnauthorized, "login failed")
			}
			fmt.Fprintf(out, "signed in as %s\n", user.Login)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "personal access token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func logoutCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := d.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
