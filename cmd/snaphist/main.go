// Command snaphist reconstructs point-in-time snapshot histories.
package main

import (
	"os"

	"github.com/roach88/snaphist/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
