// Package main is the entry point for the ArenaTV CLI application.
package main

import (
	"arenatv/cli/cmd"
)

func main() {
	cmd.Execute()
}
