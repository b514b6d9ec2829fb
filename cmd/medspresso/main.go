package main

import (
	"os"

	"medspresso/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
