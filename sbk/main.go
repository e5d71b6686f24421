// Command sbk keeps the cash ledger, stock and commissions of a
// construction company.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/sitebook/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
)

func main() {
	// Handles shell completion requests and exits, or does nothing.
	complete.Complete("sbk", cmd.Completion())

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
