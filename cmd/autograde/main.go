package main

import (
	"os"

	"github.com/h-lu/gitea-autograde/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
