// Package main is the entry point for the accounts service.
package main

import (
	"os"

	"github.com/kodefactor/accounts/internal/accounts/app"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = app.BuildVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
