package main

import (
	"os"

	"github.com/ptrgiang/automation-studio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
