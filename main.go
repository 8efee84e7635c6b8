package main

import (
	"os"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
