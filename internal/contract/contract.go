// Package contract holds the assertion helpers used for conditions that must
// never happen in a well-formed, fully resolved program.
//
// A failed assertion panics with a *Violation. Entry points (the pipeline
// runner and the evaluator's Execute) recover violations and turn them into
// ordinary errors; nothing in between ever recovers them.
package contract

import (
	"github.com/pkg/errors"
)

// Violation is the panic payload raised by a failed assertion.
type Violation struct {
	err error
}

func (v *Violation) Error() string { return v.err.Error() }

// Unwrap exposes the underlying error, which carries a stack trace.
func (v *Violation) Unwrap() error { return v.err }

// Cause is the pkg/errors form of Unwrap.
func (v *Violation) Cause() error { return v.err }

// Assert panics if cond is false.
func Assert(cond bool) {
	if !cond {
		panic(&Violation{err: errors.New("assertion failed")})
	}
}

// Assertf panics with a formatted message if cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&Violation{err: errors.Errorf(format, args...)})
	}
}

// Failf panics unconditionally.
func Failf(format string, args ...any) {
	panic(&Violation{err: errors.Errorf(format, args...)})
}

// Fail panics with err, keeping it as the cause.
func Fail(err error) {
	panic(&Violation{err: errors.WithStack(err)})
}

// Recover converts a recovered panic value into an error. Violations become
// their error; any other value is re-panicked, since it is a host bug rather
// than a program defect.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if v, ok := r.(*Violation); ok {
		return v
	}
	panic(r)
}

// Catch runs fn and returns the violation it raised, if any.
func Catch(fn func()) (err error) {
	defer func() {
		err = Recover(recover())
	}()
	fn()
	return nil
}
