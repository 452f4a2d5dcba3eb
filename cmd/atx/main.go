package main

import (
	"os"

	"github.com/defai-digital/AutomatosX-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCodeFor(err))
	}
}
