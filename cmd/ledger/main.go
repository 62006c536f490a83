package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledger/cli"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("ledger"),
		kong.Description("Parse, balance and format plain-text ledger files."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()
	code, needsPrint := cli.ExitCode(err)
	if needsPrint {
		ctx.Errorf("%s", err)
	}
	os.Exit(code)
}

func buildVersion() string {
	version := cli.Version
	if version == "" {
		version = "dev"
	}
	if cli.CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, cli.CommitSHA)
}
