package main

import (
	"os"

	"github.com/dialectiq/dialectiq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
