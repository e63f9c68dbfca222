// Package main provides the sparqlassist binary entry point.
package main

import (
	"github.com/c360studio/sparqlassist/commands"
)

const version = "0.1.0"

func main() {
	commands.Execute(version)
}
