package main

import (
	"os"

	"github.com/julas23/nixos/cmd/nxs/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
