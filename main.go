package main

import (
	"os"

	"github.com/riadafridishibly/bigdirs/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
