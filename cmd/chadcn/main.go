// Package main is the entry point for the chadcn registry catalog.
package main

import (
	"os"

	"github.com/chadcn/registry-catalog/cmd/chadcn/app"
	"github.com/chadcn/registry-catalog/internal/logger"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
