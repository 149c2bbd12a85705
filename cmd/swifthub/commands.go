package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"swifthub/internal/core/session"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/services/navigator"
)

const commandHelp = "commands: banners on|off, home, help"

// serveCommands reads one command per line from in until EOF or ctx ends
func serveCommands(ctx context.Context, in io.Reader, out io.Writer, app *session.App, console *navigator.Console) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := runCommand(app, console, sc.Text()); err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

func runCommand(app *session.App, console *navigator.Console, line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "banners":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return perr.InvalidArgf("usage: banners on|off")
		}
		app.Banners().Accept(fields[1] == "on")
		return nil
	case "home":
		app.PresentInitialScreen(console)
		return nil
	case "help":
		return perr.New(perr.ErrorCodeInvalidArgument, commandHelp)
	default:
		return perr.InvalidArgf("unknown command %q; %s", fields[0], commandHelp)
	}
}
