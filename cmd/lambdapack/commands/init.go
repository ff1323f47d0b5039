package commands

import (
	"fmt"
	"log/slog"

	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	slog.Info("Initializing configuration", logfields.Path(root.Config), slog.Bool("force", i.Force))
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", root.Config)
	return nil
}
