// Package main is the single-binary entrypoint for Momentum.
// One daemon holds your tasks and habits and serves them over HTTP.
package main

import "github.com/momentum-app/momentum/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
