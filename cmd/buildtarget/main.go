// Package main is the entry point for the buildtarget CLI.
package main

import "github.com/dshills/buildtarget/internal/cli"

func main() {
	cli.Execute()
}
