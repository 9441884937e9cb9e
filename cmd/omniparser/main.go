// Command omniparser is the CLI entry point: it wires the parser registry
// and dispatches to internal/cli.
package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"

	"github.com/omniparser-go/omniparser/internal/cli"
	"github.com/omniparser-go/omniparser/internal/logging"
)

func main() {
	logging.Configure(log.InfoLevel, os.Stderr)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
