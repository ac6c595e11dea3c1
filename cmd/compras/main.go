package main

import (
	"os"

	"github.com/edusupply/compras/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
