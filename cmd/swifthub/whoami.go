package main

import (
	"fmt"
	"time"

	"swifthub/internal/adapters/github"
	"swifthub/internal/core/provider"
	pstrings "swifthub/internal/platform/strings"

	"github.com/spf13/cobra"
)

func whoamiCmd(d *deps) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored credential and the strategy it selects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cred := d.store.Current()
			fmt.Fprintf(out, "credential: %s\n", cred.Kind())
			if tok := cred.Token(); tok != "" {
				fmt.Fprintf(out, "token:      %s\n", pstrings.Mask(tok))
			}
			if u, ok := d.store.CurrentUser(); ok {
				fmt.Fprintf(out, "user:       %s\n", u.Login)
			}
			fmt.Fprintf(out, "strategy:   %s\n", provider.Decide(d.env, cred))
			if !check {
				return nil
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			s := d.selector.Select(d.env, cred)
			u, err := s.Viewer(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "viewer:     %s\n", u.Login)
			if c, ok := s.(interface{ Client() *github.Client }); ok {
				r := c.Client().Rate()
				if !r.Reset.IsZero() {
					fmt.Fprintf(out, "rate:       %d remaining, resets %s\n", r.Remaining, r.Reset.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "verify the credential against the viewer endpoint")
	return cmd
}
