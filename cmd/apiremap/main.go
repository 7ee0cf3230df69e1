package main

import (
	"os"

	"github.com/dexopt/apiremap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
