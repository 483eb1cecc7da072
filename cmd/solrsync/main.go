// Command solrsync keeps a Solr index in sync with records in a data store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/solrsync/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBuilder(build)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
