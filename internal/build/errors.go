package build

import (
	"errors"
	"fmt"
)

// ErrNoPrefix is returned when neither the platform of a variant nor the
// package specify an installation prefix.
var ErrNoPrefix = errors.New("no installation prefix (set the platform prefix or install_prefix)")

// CheckPrefix returns an error wrapping ErrNoPrefix if pkg has no
// installation prefix in variant v.
func CheckPrefix(pkg Package, v Variant) error {
	if v.prefix(pkg) == "" {
		return fmt.Errorf("%s (variant %s): %w", pkg.Name, v.Name, ErrNoPrefix)
	}
	return nil
}

// CommandFailedError is returned by RunVariant when a build step could not
// be run or exited with a non-zero status. No further steps were run.
type CommandFailedError struct {
	Step     StepKind
	ExitCode int // -1 if the process did not exit normally
	Package  string
	Variant  string
	Args     []string

	// Err is the reason the command could not be run to completion (e.g. the
	// executable was not found, or the build was canceled). nil if the
	// command exited with ExitCode.
	Err error
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("%s (variant %s): %s step %v failed", e.Package, e.Variant, e.Step, e.Args)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: exit status %d", msg, e.ExitCode)
}

func (e *CommandFailedError) Unwrap() error { return e.Err }
