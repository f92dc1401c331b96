//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs a search, e.g. mage search "graph neural networks".
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search", query)
}

// Serve builds the CLI and runs the JSON API with debug logging.
func Serve() error {
	mg.Deps(Build)
	return sh.RunWithV(map[string]string{"SCHOLAR_DIGEST_LOG_LEVEL": "debug"}, binPath(), "serve")
}
