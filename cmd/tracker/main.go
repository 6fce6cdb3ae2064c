// Package main implements tracker, the operator command line for the task
// assignment store. Every command performs one engine operation and prints
// its result as JSON on stdout.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args, RunnerOpts{Output: os.Stdout, ErrOutput: os.Stderr}))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, opts RunnerOpts) int {
	r := NewRunner(opts)
	defer r.Close()

	if err := r.Command().Run(ctx, args); err != nil {
		return r.reportError(err)
	}
	return exitOK
}
