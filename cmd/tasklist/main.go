package main

import (
	"context"
	"fmt"
	"os"

	"tasklist/internal/cli"
	"tasklist/internal/config"
)

func main() {
	root := cli.NewRootCommand(config.NewLoader())

	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.NewErrorHandler().ExitCode(err))
	}
}
