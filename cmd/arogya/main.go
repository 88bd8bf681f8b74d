package main

import (
	"fmt"
	"os"

	"github.com/gmsas95/arogya-cli/internal/cli"
	"github.com/gmsas95/arogya-cli/internal/config"
)

var version = "dev"

func main() {
	// .env values feed the AROGYA_* lookups in config.Load
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cli.Version = version
	os.Exit(cli.Execute(os.Args[1:]))
}
