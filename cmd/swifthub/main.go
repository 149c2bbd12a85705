// Command swifthub runs the GitHub client core from a terminal.
//
// Commands
//
//   - start    Present the home screen and follow credential changes
//   - stub     Serve the staging backend over HTTP
//   - login    Sign in with a personal access token
//   - logout   Remove the stored credential
//   - whoami   Show the stored credential and the strategy it selects
//
// Configuration is read from SWIFTHUB_* environment variables, logging from LOG_*
package main

import (
	"os"

	"swifthub/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Error().Err(err).Msg("swifthub failed")
		os.Exit(1)
	}
}
