package main

import (
	"os"

	"github.com/grafana/zitadel-token-go/pkg/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
