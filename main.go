// Package main is the entry point of the menagerie CLI, an admin console for
// REST collection services.
package main

import (
	"menagerie/cli/cmd"
)

func main() {
	cmd.Execute()
}
