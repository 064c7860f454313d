package main

import (
	"os"

	"github.com/testbridge/testbridge/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
