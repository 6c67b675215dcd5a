// Package main is the entry point for the xtivi application.
package main

import (
	"os"

	"github.com/okarabulut/xtivi/cmd/xtivi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
