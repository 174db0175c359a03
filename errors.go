package stage

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Error kinds. Callers test for them with errors.Is.
var (
	// ErrUnknownMetric is returned when the catalog has no record for a size or code.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrBadIndex is returned for a named point index absent from a frame table.
	ErrBadIndex = errors.New("bad index")
	// ErrAxisUndefined is returned when looking up along an axis left as the zero vector.
	ErrAxisUndefined = errors.New("axis undefined")
	// ErrBadGeometry is returned when parameters make a primitive degenerate.
	ErrBadGeometry = errors.New("bad geometry")
	// ErrKernelFailure is returned when the solid kernel refuses an operation.
	ErrKernelFailure = errors.New("kernel failure")
)

// BuildError names the part and the step at which its construction failed.
type BuildError struct {
	Part string // name of the part being built
	Step string // build step, e.g. "idler hole"
	Err  error
	// stack is kept when the error originated in a panic.
	stack string
}

func (e *BuildError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("build %s: %v", e.Part, e.Err)
	}
	return fmt.Sprintf("build %s: %s: %v", e.Part, e.Step, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Stack returns the goroutine stack captured when the error was recovered
// from a panic. It is empty for errors returned normally.
func (e *BuildError) Stack() string { return e.stack }

// Recover converts a panic or a returned error into a *BuildError naming
// part and the current value of *step. It must be deferred:
//
//	var step string
//	defer stage.Recover("tensioner", &step, &err)
//
// Panics carrying an error keep it as the cause. Runtime errors and any other
// panic value are reported as ErrKernelFailure.
func Recover(part string, step *string, err *error) {
	a := recover()
	var s string
	if step != nil {
		s = *step
	}
	if a != nil {
		var cause error
		switch a := a.(type) {
		case runtime.Error:
			cause = fmt.Errorf("%w: %w", ErrKernelFailure, a)
		case error:
			cause = a
		default:
			cause = fmt.Errorf("%w: %v", ErrKernelFailure, a)
		}
		*err = &BuildError{Part: part, Step: s, Err: cause, stack: string(debug.Stack())}
		return
	}
	if *err == nil {
		return
	}
	var be *BuildError
	if errors.As(*err, &be) {
		return
	}
	*err = &BuildError{Part: part, Step: s, Err: *err}
}

// Must panics if err is not nil. It is meant for use inside functions that
// defer Recover.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
