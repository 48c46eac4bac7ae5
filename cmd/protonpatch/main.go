// Package main is the entry point for the protonpatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/protonpatch/protonpatch/cmd/protonpatch/commands"
	"github.com/protonpatch/protonpatch/internal/errors"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the returned error to a process
// exit code. Commands signal their code through *errors.ExitError; anything
// else is a plain user error.
func run() int {
	err := commands.Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		}
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return errors.ExitUser
}
