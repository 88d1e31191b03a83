// Package main provides the entry point for the photodedup CLI.
package main

import (
	"os"

	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
