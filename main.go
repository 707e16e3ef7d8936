package main

import (
	"os"

	"github.com/NJ2612/ev-charge-optimizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
