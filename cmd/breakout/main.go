package main

import (
	"os"

	"github.com/ichikk/sessionbreakout/cmd/breakout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
