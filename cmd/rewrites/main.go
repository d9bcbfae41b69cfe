// Package main provides the rewrites CLI.
package main

import (
	"fmt"
	"os"

	"github.com/amenk/import-product/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
