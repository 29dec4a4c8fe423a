package main

import (
	"os"

	"github.com/ecairns22/urlwait/cmd/urlwait/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
