package form3

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/soypat/stage"
)

// shapeErr is returned when a panic is recovered while building a shape.
type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Unwrap classifies the panic. Input validation in must3 panics with strings
// and is reported as bad geometry. Anything else came out of the kernel.
func (s *shapeErr) Unwrap() error {
	switch p := s.panicObj.(type) {
	case string:
		return stage.ErrBadGeometry
	case error:
		if errors.Is(p, stage.ErrBadGeometry) || errors.Is(p, stage.ErrBadIndex) ||
			errors.Is(p, stage.ErrAxisUndefined) || errors.Is(p, stage.ErrUnknownMetric) {
			return p
		}
	}
	return stage.ErrKernelFailure
}

// Stack returns the stack trace captured at the panic.
func (s *shapeErr) Stack() string { return s.stack }

// catch must be deferred by exported constructors so panics raised while
// building never cross the package boundary.
func catch(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

func badGeometry(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{stage.ErrBadGeometry}, args...)...)
}
