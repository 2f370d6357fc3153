// Package main is the algotrading CLI entry point.
package main

import (
	"os"

	"github.com/ryanlattanzi/algo-trading/cmd/algotrading/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
