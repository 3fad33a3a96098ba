package main

import (
	"os"

	"github.com/coremem/coremem/cmd/corememctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
