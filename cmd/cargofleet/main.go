// Command cargofleet runs container fleet scenarios from the command line.
package main

import (
	"os"

	"cargofleet/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	os.Exit(cli.Execute(cli.NewRootCommand(os.Stdout, os.Stderr)))
}
