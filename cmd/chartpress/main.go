package main

import (
	"os"

	"github.com/arcline-labs/chartpress/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
