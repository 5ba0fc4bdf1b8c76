package main

import (
	"github.com/distillyzer/dz-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
