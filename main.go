// Package main is the entry point for the chronoplan application
package main

import (
	"github.com/Predictia/chronoplan/cmd"
)

func main() {
	cmd.Execute()
}
