package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/redact"
	"github.com/phrazzld/tasktrack/internal/service/assignment"
)

// Process exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitNotFound   = 3
	exitConflict   = 4
	exitDuplicate  = 5
	exitStore      = 6
)

// errUsage marks malformed command-line arguments.
var errUsage = errors.New("invalid arguments")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, assignment.ErrAssignmentConflict):
		return exitConflict
	case errors.Is(err, assignment.ErrNotFound), errors.Is(err, assignment.ErrReferenceNotFound):
		return exitNotFound
	case errors.Is(err, assignment.ErrDuplicateEmail):
		return exitDuplicate
	case errors.Is(err, assignment.ErrStoreFailure):
		return exitStore
	case errors.Is(err, domain.ErrValidation):
		return exitValidation
	default:
		return exitFailure
	}
}

type conflictReport struct {
	Error     string                `json:"error"`
	Conflicts []assignment.Conflict `json:"conflicts"`
}

// reportError prints err and returns its exit code. Conflicts are printed as
// JSON on stdout so scripts can see which tasks are held by whom.
func (r *Runner) reportError(err error) int {
	if conflicts := assignment.Conflicts(err); len(conflicts) > 0 {
		if werr := r.writeJSON(conflictReport{Error: err.Error(), Conflicts: conflicts}); werr != nil {
			fmt.Fprintf(r.errOutput, "error: %s\n", redact.Error(werr))
		}
	}
	fmt.Fprintf(r.errOutput, "error: %s\n", redact.Error(err))
	return exitCode(err)
}
