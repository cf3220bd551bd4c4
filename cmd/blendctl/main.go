package main

import (
	"os"

	"github.com/meshkit/blendctl/internal/cli"
)

var version = "0.1.0"

func main() {
	os.Exit(cli.Execute(version, os.Args[1:]))
}
