// Package main is the single-binary entrypoint for reviewforge.
package main

import "github.com/reviewforge/reviewforge/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
