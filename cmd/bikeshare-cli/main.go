// Command bikeshare-cli imports the usage CSV into SQLite and prints the
// dashboard aggregations in the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"bikeshare/internal/cli"
	"bikeshare/internal/config"
	applog "bikeshare/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
