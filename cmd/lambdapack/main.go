package main

import (
	"github.com/alecthomas/kong"

	"github.com/snapit/lambdapack/cmd/lambdapack/commands"
	"github.com/snapit/lambdapack/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("lambdapack"),
		kong.Description("Packages serverless function directories into deployable zip archives"),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
