// Command shirokuma is the CLI and MCP server entrypoint for the
// shirokuma knowledge base.
package main

import (
	"os"

	"github.com/shirokuma-dev/shirokuma/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
