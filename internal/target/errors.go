package target

import (
	"errors"
	"fmt"
)

// Errors returned by target operations.
var (
	// ErrTargetNotFound indicates the target name isn't declared.
	ErrTargetNotFound = errors.New("target doesn't exist")

	// ErrNoTargets indicates there are no targets to choose from.
	ErrNoTargets = errors.New("the project doesn't have any targets")

	// ErrInvalidType indicates an unknown target type.
	ErrInvalidType = errors.New("invalid target type")

	// ErrMissingEngine indicates a bundling target without a build engine.
	ErrMissingEngine = errors.New("missing build engine")

	// ErrInvalidCopyItem indicates a malformed copy list entry.
	ErrInvalidCopyItem = errors.New("invalid copy item")

	// ErrCopyNotSupported indicates a node target that doesn't bundle.
	ErrCopyNotSupported = errors.New("only browser targets and bundled node targets can copy files")

	// ErrCopySourceMissing indicates a file to copy doesn't exist.
	ErrCopySourceMissing = errors.New("file to copy doesn't exist")

	// ErrNotBrowserTarget indicates a browser-only operation on a node target.
	ErrNotBrowserTarget = errors.New("not a browser target")

	// ErrNoTargetForFile indicates no target source directory contains the file.
	ErrNoTargetForFile = errors.New("no target contains the file")

	// ErrConfigurationNotFound indicates a named app configuration file is missing.
	ErrConfigurationNotFound = errors.New("configuration file not found")
)

// Error describes a failed operation on a named target.
type Error struct {
	// Target is the target name.
	Target string
	// Op is the operation that failed.
	Op string
	// Err is the underlying error.
	Err error
}

func newError(name, op string, err error) *Error {
	return &Error{Target: name, Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s target '%s': %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
