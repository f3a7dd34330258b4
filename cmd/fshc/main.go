// Command fshc compiles shorthand definition sources into target-format
// structure-definition JSON.
package main

import (
	"context"
	"os"

	"github.com/oxhq/fshc/internal/cli"
	"github.com/oxhq/fshc/internal/config"
	"github.com/oxhq/fshc/internal/model"
)

func main() {
	cfg := config.FromEnvironment()

	exitCode := 0
	root := config.BuildRootCommand(cfg, &exitCode, func(cfg *model.Config) int {
		return cli.Run(context.Background(), cfg)
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}
